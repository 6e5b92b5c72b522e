package browser

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/rpa-cli/internal/core/domain"
	"github.com/custodia-labs/rpa-cli/internal/logger"
)

// ScrollTarget locates the element ScrollTo centres. Exactly one field is set.
type ScrollTarget struct {
	Selector string
	XPath    string
}

const centreScript = `
  const x = target.getBoundingClientRect().left + window.pageXOffset - window.innerWidth / 2;
  const y = target.getBoundingClientRect().top + window.pageYOffset - window.innerHeight / 2;
  window.scrollTo(x, y);
}`

// ScrollTo scrolls the page so the target element sits in the middle of the
// viewport.
func (b *Browser) ScrollTo(t ScrollTarget) error {
	logger.Debug("WebBrowser.scrollTo selector=%q xpath=%q", t.Selector, t.XPath)
	js, err := scrollScript(t)
	if err != nil {
		return err
	}
	_, err = b.wd.ExecuteScript(js, nil)
	return err
}

func scrollScript(t ScrollTarget) (string, error) {
	switch {
	case t.Selector != "" && t.XPath == "":
		return "{\n  const target = document.querySelector(`" + escapeJS(t.Selector) + "`);" + centreScript, nil
	case t.XPath != "" && t.Selector == "":
		return "{\n  const target = document.evaluate(`" + escapeJS(t.XPath) +
			"`, document, null, XPathResult.ANY_TYPE, null).iterateNext();" + centreScript, nil
	default:
		return "", fmt.Errorf("scroll target needs exactly one of selector or xpath: %w", domain.ErrInvalidInput)
	}
}

// escapeJS writes every rune as a \u{...} escape so the value cannot break
// out of the template literal it is embedded in.
func escapeJS(s string) string {
	var sb strings.Builder
	for _, r := range s {
		fmt.Fprintf(&sb, `\u{%x}`, r)
	}
	return sb.String()
}
