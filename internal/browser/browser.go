// Package browser drives Chrome over the WebDriver protocol for automation
// scripts. It wraps github.com/tebeka/selenium with the options the toolkit
// needs: a throwaway profile, downloads into the workspace and optional
// mobile emulation.
package browser

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"

	"github.com/custodia-labs/rpa-cli/internal/core/domain"
	"github.com/custodia-labs/rpa-cli/internal/download"
	"github.com/custodia-labs/rpa-cli/internal/files"
	"github.com/custodia-labs/rpa-cli/internal/logger"
)

// Mobile emulation profile.
const (
	mobileWidth      = 360
	mobileHeight     = 640
	mobilePixelRatio = 3.0
	mobileUserAgent  = "Mozilla/5.0 (Linux; Android 4.2.1; en-us; Nexus 5 Build/JOP40D) AppleWebKit/535.19 " +
		"(KHTML, like Gecko) Chrome/18.0.1025.166 Mobile Safari/535.19"
)

// driver is the subset of selenium.WebDriver the facade uses.
type driver interface {
	SessionID() string
	Get(url string) error
	Quit() error
	WaitWithTimeout(cond selenium.Condition, timeout time.Duration) error
	FindElement(by, value string) (selenium.WebElement, error)
	FindElements(by, value string) ([]selenium.WebElement, error)
	Screenshot() ([]byte, error)
	CurrentURL() (string, error)
	GetCookie(name string) (selenium.Cookie, error)
	GetCookies() ([]selenium.Cookie, error)
	ExecuteScript(script string, args []interface{}) (interface{}, error)
}

// Config configures a browser session.
type Config struct {
	// RemoteURL is the WebDriver endpoint, e.g. http://localhost:4444/wd/hub.
	RemoteURL string
	Headless  bool
	Mobile    bool

	// HTTPClient sends the Chromium-specific commands. Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// ConfigFromSettings maps persisted settings onto a Config.
func ConfigFromSettings(s domain.BrowserSettings) Config {
	return Config{
		RemoteURL: s.RemoteURL,
		Headless:  s.Headless,
		Mobile:    s.Mobile,
	}
}

// Browser is a live Chrome session bound to a workspace.
type Browser struct {
	wd     driver
	cfg    Config
	files  *files.Files
	waiter *download.Waiter
	now    func() time.Time
}

// New wipes the profile directory, opens a remote Chrome session and enables
// downloads into the workspace.
func New(ctx context.Context, cfg Config, f *files.Files) (*Browser, error) {
	userData := f.Path("user-data")
	if err := f.RemoveAll("user-data"); err != nil {
		return nil, fmt.Errorf("reset chrome profile: %w", err)
	}

	downloadDir, err := filepath.Abs(f.Root())
	if err != nil {
		return nil, err
	}

	caps := Capabilities(cfg, userData, downloadDir)
	wd, err := selenium.NewRemote(caps, cfg.RemoteURL)
	if err != nil {
		return nil, fmt.Errorf("start webdriver session: %w", err)
	}

	b := newBrowser(wd, cfg, f)
	if err := b.enableDownloads(ctx, downloadDir); err != nil {
		_ = wd.Quit()
		return nil, err
	}
	return b, nil
}

func newBrowser(wd driver, cfg Config, f *files.Files) *Browser {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	return &Browser{
		wd:     wd,
		cfg:    cfg,
		files:  f,
		waiter: download.NewWaiter(f.Fs(), f.Root()),
		now:    time.Now,
	}
}

// Capabilities builds the Chrome capabilities for a session.
func Capabilities(cfg Config, userDataDir, downloadDir string) selenium.Capabilities {
	args := []string{
		"--no-sandbox",
		"--disable-gpu",
		"--window-size=1980,1200",
		"--user-data-dir=" + userDataDir,
		"--disable-dev-shm-usage",
	}
	if cfg.Headless {
		args = append(args, "--headless")
	}

	chromeCaps := chrome.Capabilities{
		Args: args,
		Prefs: map[string]interface{}{
			"download.default_directory":   downloadDir,
			"download.prompt_for_download": false,
		},
	}
	if cfg.Mobile {
		chromeCaps.MobileEmulation = &chrome.MobileEmulation{
			DeviceMetrics: &chrome.DeviceMetrics{
				Width:      mobileWidth,
				Height:     mobileHeight,
				PixelRatio: mobilePixelRatio,
			},
			UserAgent: mobileUserAgent,
		}
	}

	caps := selenium.Capabilities{"browserName": "chrome"}
	caps.AddChrome(chromeCaps)
	return caps
}

// Driver exposes the underlying WebDriver session.
func (b *Browser) Driver() selenium.WebDriver {
	wd, _ := b.wd.(selenium.WebDriver)
	return wd
}

// Get navigates to url.
func (b *Browser) Get(url string) error {
	logger.Debug("WebBrowser.get %s", url)
	return b.wd.Get(url)
}

// Quit ends the session.
func (b *Browser) Quit() error {
	logger.Debug("WebBrowser.quit")
	return b.wd.Quit()
}

// Wait polls cond until it holds or timeout elapses.
func (b *Browser) Wait(cond selenium.Condition, timeout time.Duration) error {
	logger.Debug("WebBrowser.wait timeout=%s", timeout)
	return b.wd.WaitWithTimeout(cond, timeout)
}

// MouseMove moves the pointer onto element.
func (b *Browser) MouseMove(element selenium.WebElement) error {
	logger.Debug("WebBrowser.mouseMove")
	return element.MoveTo(0, 0)
}

// MouseClick moves onto element and clicks it.
func (b *Browser) MouseClick(element selenium.WebElement) error {
	logger.Debug("WebBrowser.mouseClick")
	if err := element.MoveTo(0, 0); err != nil {
		return err
	}
	return element.Click()
}

// SendKeys types keys into element. Special keys are the selenium.*Key constants.
func (b *Browser) SendKeys(element selenium.WebElement, keys string) error {
	logger.Debug("WebBrowser.sendKeys")
	return element.SendKeys(keys)
}

// FindElement finds the first element matching a CSS selector.
func (b *Browser) FindElement(selector string) (selenium.WebElement, error) {
	logger.Debug("WebBrowser.findElement %s", selector)
	return b.wd.FindElement(selenium.ByCSSSelector, selector)
}

// FindElements finds every element matching a CSS selector.
func (b *Browser) FindElements(selector string) ([]selenium.WebElement, error) {
	logger.Debug("WebBrowser.findElements %s", selector)
	return b.wd.FindElements(selenium.ByCSSSelector, selector)
}

func (b *Browser) FindElementByID(id string) (selenium.WebElement, error) {
	logger.Debug("WebBrowser.findElementById %s", id)
	return b.wd.FindElement(selenium.ByID, id)
}

func (b *Browser) FindElementsByID(id string) ([]selenium.WebElement, error) {
	logger.Debug("WebBrowser.findElementsById %s", id)
	return b.wd.FindElements(selenium.ByID, id)
}

func (b *Browser) FindElementByClassName(name string) (selenium.WebElement, error) {
	logger.Debug("WebBrowser.findElementByClassName %s", name)
	return b.wd.FindElement(selenium.ByClassName, name)
}

func (b *Browser) FindElementsByClassName(name string) ([]selenium.WebElement, error) {
	logger.Debug("WebBrowser.findElementsByClassName %s", name)
	return b.wd.FindElements(selenium.ByClassName, name)
}

func (b *Browser) FindElementByCSSSelector(selector string) (selenium.WebElement, error) {
	logger.Debug("WebBrowser.findElementByCSSSelector %s", selector)
	return b.wd.FindElement(selenium.ByCSSSelector, selector)
}

func (b *Browser) FindElementsByCSSSelector(selector string) ([]selenium.WebElement, error) {
	logger.Debug("WebBrowser.findElementsByCSSSelector %s", selector)
	return b.wd.FindElements(selenium.ByCSSSelector, selector)
}

func (b *Browser) FindElementByXPath(xpath string) (selenium.WebElement, error) {
	logger.Debug("WebBrowser.findElementByXPath %s", xpath)
	return b.wd.FindElement(selenium.ByXPATH, xpath)
}

func (b *Browser) FindElementsByXPath(xpath string) ([]selenium.WebElement, error) {
	logger.Debug("WebBrowser.findElementsByXPath %s", xpath)
	return b.wd.FindElements(selenium.ByXPATH, xpath)
}

func (b *Browser) FindElementByLinkText(text string) (selenium.WebElement, error) {
	logger.Debug("WebBrowser.findElementByLinkText %s", text)
	return b.wd.FindElement(selenium.ByLinkText, text)
}

// TakeScreenshot saves a PNG of the viewport as <unix-seconds>.png in the
// workspace and returns its name.
func (b *Browser) TakeScreenshot() (string, error) {
	logger.Debug("WebBrowser.takeScreenshot")
	img, err := b.wd.Screenshot()
	if err != nil {
		return "", err
	}
	name := strconv.FormatInt(b.now().Unix(), 10) + ".png"
	if err := b.files.Write(name, img); err != nil {
		return "", err
	}
	return name, nil
}

// CurrentURL returns the URL of the active page.
func (b *Browser) CurrentURL() (string, error) {
	logger.Debug("WebBrowser.getCurrentUrl")
	return b.wd.CurrentURL()
}

// Cookie returns the named cookie.
func (b *Browser) Cookie(name string) (selenium.Cookie, error) {
	logger.Debug("WebBrowser.getCookie %s", name)
	return b.wd.GetCookie(name)
}

// Cookies returns every cookie visible to the current page.
func (b *Browser) Cookies() ([]selenium.Cookie, error) {
	logger.Debug("WebBrowser.getCookies")
	return b.wd.GetCookies()
}

// WaitForDownload runs trigger and waits for the resulting file to land in
// the workspace. It returns the file name.
func (b *Browser) WaitForDownload(ctx context.Context, trigger download.Trigger, opts ...download.WaitOption) (string, error) {
	logger.Debug("WebBrowser.waitForDownload")
	return b.waiter.WaitForCompletion(ctx, trigger, opts...)
}
