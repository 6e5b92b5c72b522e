package browser

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"

	"github.com/custodia-labs/rpa-cli/internal/core/domain"
	"github.com/custodia-labs/rpa-cli/internal/download"
	"github.com/custodia-labs/rpa-cli/internal/files"
)

type fakeDriver struct {
	session    string
	visited    []string
	quit       bool
	lookups    [][2]string
	scripts    []string
	screenshot []byte
	url        string
	cookies    []selenium.Cookie
	err        error
}

func (d *fakeDriver) SessionID() string { return d.session }

func (d *fakeDriver) Get(url string) error {
	d.visited = append(d.visited, url)
	return d.err
}

func (d *fakeDriver) Quit() error {
	d.quit = true
	return nil
}

func (d *fakeDriver) WaitWithTimeout(cond selenium.Condition, _ time.Duration) error {
	ok, err := cond(nil)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("timeout")
	}
	return nil
}

func (d *fakeDriver) FindElement(by, value string) (selenium.WebElement, error) {
	d.lookups = append(d.lookups, [2]string{by, value})
	return &fakeElement{}, d.err
}

func (d *fakeDriver) FindElements(by, value string) ([]selenium.WebElement, error) {
	d.lookups = append(d.lookups, [2]string{by, value})
	return []selenium.WebElement{&fakeElement{}, &fakeElement{}}, d.err
}

func (d *fakeDriver) Screenshot() ([]byte, error) { return d.screenshot, d.err }

func (d *fakeDriver) CurrentURL() (string, error) { return d.url, nil }

func (d *fakeDriver) GetCookie(name string) (selenium.Cookie, error) {
	for _, c := range d.cookies {
		if c.Name == name {
			return c, nil
		}
	}
	return selenium.Cookie{}, errors.New("no such cookie")
}

func (d *fakeDriver) GetCookies() ([]selenium.Cookie, error) { return d.cookies, nil }

func (d *fakeDriver) ExecuteScript(script string, _ []interface{}) (interface{}, error) {
	d.scripts = append(d.scripts, script)
	return nil, nil
}

// fakeElement overrides the element methods the facade calls.
type fakeElement struct {
	selenium.WebElement
	moves  int
	clicks int
	keys   string
}

func (e *fakeElement) MoveTo(_, _ int) error {
	e.moves++
	return nil
}

func (e *fakeElement) Click() error {
	e.clicks++
	return nil
}

func (e *fakeElement) SendKeys(keys string) error {
	e.keys += keys
	return nil
}

func newTestBrowser(t *testing.T, d *fakeDriver) (*Browser, *files.Files) {
	t.Helper()
	f := files.New(afero.NewMemMapFs(), "/work")
	require.NoError(t, f.MakeDir(""))
	return newBrowser(d, Config{RemoteURL: "http://unused"}, f), f
}

func TestCapabilities(t *testing.T) {
	caps := Capabilities(Config{Headless: true}, "/work/user-data", "/work")

	chromeCaps, ok := caps[chrome.CapabilitiesKey].(chrome.Capabilities)
	require.True(t, ok)
	assert.Equal(t, []string{
		"--no-sandbox",
		"--disable-gpu",
		"--window-size=1980,1200",
		"--user-data-dir=/work/user-data",
		"--disable-dev-shm-usage",
		"--headless",
	}, chromeCaps.Args)
	assert.Equal(t, "/work", chromeCaps.Prefs["download.default_directory"])
	assert.Equal(t, false, chromeCaps.Prefs["download.prompt_for_download"])
	assert.Nil(t, chromeCaps.MobileEmulation)
}

func TestCapabilities_MobileWithWindow(t *testing.T) {
	caps := Capabilities(Config{Mobile: true}, "/u", "/d")

	chromeCaps := caps[chrome.CapabilitiesKey].(chrome.Capabilities)
	assert.NotContains(t, chromeCaps.Args, "--headless")
	require.NotNil(t, chromeCaps.MobileEmulation)
	require.NotNil(t, chromeCaps.MobileEmulation.DeviceMetrics)
	assert.EqualValues(t, 360, chromeCaps.MobileEmulation.DeviceMetrics.Width)
	assert.EqualValues(t, 640, chromeCaps.MobileEmulation.DeviceMetrics.Height)
	assert.Equal(t, 3.0, chromeCaps.MobileEmulation.DeviceMetrics.PixelRatio)
	assert.Contains(t, chromeCaps.MobileEmulation.UserAgent, "Mobile Safari")
}

func TestConfigFromSettings(t *testing.T) {
	cfg := ConfigFromSettings(domain.BrowserSettings{RemoteURL: "http://x", Headless: true, Mobile: true})

	assert.Equal(t, Config{RemoteURL: "http://x", Headless: true, Mobile: true}, cfg)
}

func TestBrowser_FindElementStrategies(t *testing.T) {
	d := &fakeDriver{}
	b, _ := newTestBrowser(t, d)

	_, _ = b.FindElement("#a")
	_, _ = b.FindElementByID("a")
	_, _ = b.FindElementByClassName("c")
	_, _ = b.FindElementByCSSSelector("div > p")
	_, _ = b.FindElementByXPath("//p")
	_, _ = b.FindElementByLinkText("Next")
	els, err := b.FindElementsByXPath("//li")

	require.NoError(t, err)
	assert.Len(t, els, 2)
	assert.Equal(t, [][2]string{
		{selenium.ByCSSSelector, "#a"},
		{selenium.ByID, "a"},
		{selenium.ByClassName, "c"},
		{selenium.ByCSSSelector, "div > p"},
		{selenium.ByXPATH, "//p"},
		{selenium.ByLinkText, "Next"},
		{selenium.ByXPATH, "//li"},
	}, d.lookups)
}

func TestBrowser_MouseAndKeys(t *testing.T) {
	b, _ := newTestBrowser(t, &fakeDriver{})
	el := &fakeElement{}

	require.NoError(t, b.MouseMove(el))
	require.NoError(t, b.MouseClick(el))
	require.NoError(t, b.SendKeys(el, "hello"+selenium.EnterKey))

	assert.Equal(t, 2, el.moves)
	assert.Equal(t, 1, el.clicks)
	assert.Equal(t, "hello"+selenium.EnterKey, el.keys)
}

func TestBrowser_TakeScreenshot(t *testing.T) {
	d := &fakeDriver{screenshot: []byte("png-bytes")}
	b, f := newTestBrowser(t, d)
	b.now = func() time.Time { return time.Unix(1700000000, 0) }

	name, err := b.TakeScreenshot()

	require.NoError(t, err)
	assert.Equal(t, "1700000000.png", name)
	data, err := f.Read(name)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestBrowser_NavigationAndCookies(t *testing.T) {
	d := &fakeDriver{
		url:     "https://example.com/after",
		cookies: []selenium.Cookie{{Name: "sid", Value: "1"}, {Name: "lang", Value: "ja"}},
	}
	b, _ := newTestBrowser(t, d)

	require.NoError(t, b.Get("https://example.com"))
	u, err := b.CurrentURL()
	require.NoError(t, err)
	c, err := b.Cookie("lang")
	require.NoError(t, err)
	all, err := b.Cookies()
	require.NoError(t, err)
	require.NoError(t, b.Quit())

	assert.Equal(t, []string{"https://example.com"}, d.visited)
	assert.Equal(t, "https://example.com/after", u)
	assert.Equal(t, "ja", c.Value)
	assert.Len(t, all, 2)
	assert.True(t, d.quit)
}

func TestBrowser_Wait(t *testing.T) {
	b, _ := newTestBrowser(t, &fakeDriver{})

	assert.NoError(t, b.Wait(func(selenium.WebDriver) (bool, error) { return true, nil }, time.Second))
	assert.Error(t, b.Wait(func(selenium.WebDriver) (bool, error) { return false, nil }, time.Second))
}

func TestBrowser_ScrollTo(t *testing.T) {
	d := &fakeDriver{}
	b, _ := newTestBrowser(t, d)

	require.NoError(t, b.ScrollTo(ScrollTarget{Selector: "#a"}))
	require.NoError(t, b.ScrollTo(ScrollTarget{XPath: "//p"}))

	require.Len(t, d.scripts, 2)
	assert.Contains(t, d.scripts[0], "document.querySelector(`\\u{23}\\u{61}`)")
	assert.Contains(t, d.scripts[1], "document.evaluate(`\\u{2f}\\u{2f}\\u{70}`")
	assert.Contains(t, d.scripts[1], "window.scrollTo(x, y)")
}

func TestBrowser_ScrollTo_InvalidTarget(t *testing.T) {
	b, _ := newTestBrowser(t, &fakeDriver{})

	assert.ErrorIs(t, b.ScrollTo(ScrollTarget{}), domain.ErrInvalidInput)
	assert.ErrorIs(t, b.ScrollTo(ScrollTarget{Selector: "a", XPath: "b"}), domain.ErrInvalidInput)
}

func TestEscapeJS(t *testing.T) {
	assert.Equal(t, `\u{60}\u{24}\u{7b}`, escapeJS("`${"))
	assert.Equal(t, `\u{3042}\u{1f600}`, escapeJS("あ😀"))
	assert.Equal(t, "", escapeJS(""))
}

func TestBrowser_EnableDownloads(t *testing.T) {
	var got struct {
		Cmd    string                 `json:"cmd"`
		Params map[string]interface{} `json:"params"`
	}
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := files.New(afero.NewMemMapFs(), "/work")
	b := newBrowser(&fakeDriver{session: "abc"}, Config{RemoteURL: srv.URL + "/wd/hub/"}, f)

	require.NoError(t, b.enableDownloads(context.Background(), "/work"))

	assert.Equal(t, "/wd/hub/session/abc/chromium/send_command", path)
	assert.Equal(t, "Page.setDownloadBehavior", got.Cmd)
	assert.Equal(t, "allow", got.Params["behavior"])
	assert.Equal(t, "/work", got.Params["downloadPath"])
}

func TestBrowser_EnableDownloads_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown command", http.StatusNotFound)
	}))
	defer srv.Close()

	f := files.New(afero.NewMemMapFs(), "/work")
	b := newBrowser(&fakeDriver{session: "abc"}, Config{RemoteURL: srv.URL}, f)

	err := b.enableDownloads(context.Background(), "/work")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestBrowser_WaitForDownload(t *testing.T) {
	b, f := newTestBrowser(t, &fakeDriver{})

	name, err := b.WaitForDownload(context.Background(), func(context.Context) error {
		return f.Write("report.csv", []byte("a,b"))
	}, download.WithExtension("csv"), download.WithTimeout(2*time.Second))

	require.NoError(t, err)
	assert.Equal(t, "report.csv", name)
}
