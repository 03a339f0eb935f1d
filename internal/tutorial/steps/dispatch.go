package steps

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/sirupsen/logrus"
)

// noopWaitMs is the fixed pause taken for steps no rule matches.
const noopWaitMs = 1500

// Rule binds one text pattern to a builder producing the ActionSpec for a
// matching step. Rules are tried in declaration order and the first match
// wins; generic shapes must come after the specific shapes they subsume.
type Rule struct {
	Pattern *regexp.Regexp
	Build   func(groups []string) ActionSpec
}

// Dispatcher resolves action step text through an ordered rule table. The
// table is injected at construction so tests can run with their own rules.
type Dispatcher struct {
	rules []Rule
}

func NewDispatcher(rules []Rule) *Dispatcher {
	return &Dispatcher{rules: rules}
}

// Resolve maps step text to an ActionSpec. Unmatched text degrades to a
// logged no-op with a fixed wait; an unmapped step never fails a feature.
func (d *Dispatcher) Resolve(text string) ActionSpec {
	for _, r := range d.rules {
		if m := r.Pattern.FindStringSubmatch(text); m != nil {
			return r.Build(m[1:])
		}
	}
	logrus.WithField("step", text).Warn("no dispatch rule matched, using no-op wait")
	return ActionSpec{Kind: KindNoop, Target: text, WaitMs: noopWaitMs}
}

// pageRoutes maps page names used in step text to application routes.
var pageRoutes = map[string]string{
	"home":       "/",
	"dashboard":  "/dashboard",
	"login":      "/login",
	"settings":   "/settings",
	"reports":    "/reports",
	"repository": "/repositories",
}

// elementSelectors maps element names to selectors. A name missing here
// falls back to a contains-text XPath so new UI copy still resolves.
var elementSelectors = map[string]string{
	"repository list": `[data-testid="repository-list"]`,
	"search box":      `input[type="search"]`,
	"save button":     `button[type="submit"]`,
	"logout button":   `[data-testid="logout"]`,
	"navigation menu": `nav[role="navigation"]`,
	"report table":    `[data-testid="report-table"]`,
}

// fieldSelectors maps form field names to input selectors.
var fieldSelectors = map[string]string{
	"username": `input[name="username"]`,
	"password": `input[name="password"]`,
	"search":   `input[type="search"]`,
	"email":    `input[name="email"]`,
}

func elementSelector(name string) string {
	if sel, ok := elementSelectors[name]; ok {
		return sel
	}
	return fmt.Sprintf(`//*[contains(normalize-space(text()), %q)]`, name)
}

func fieldSelector(name string) string {
	if sel, ok := fieldSelectors[name]; ok {
		return sel
	}
	return fmt.Sprintf(`input[placeholder*=%q]`, name)
}

func pageRoute(name string) string {
	if p, ok := pageRoutes[name]; ok {
		return p
	}
	return "/" + name
}

// DefaultRules returns the production dispatch table. Order matters: the
// field-entry and button shapes subsume the generic click shape, so they are
// declared first.
func DefaultRules() []Rule {
	return []Rule{
		{
			Pattern: regexp.MustCompile(`^I navigate to the "(.+)" page$`),
			Build: func(g []string) ActionSpec {
				return ActionSpec{Kind: KindNavigate, Target: g[0], Path: pageRoute(g[0])}
			},
		},
		{
			Pattern: regexp.MustCompile(`^I enter "(.+)" in the "(.+)" field$`),
			Build: func(g []string) ActionSpec {
				return ActionSpec{Kind: KindFill, Target: g[1], Selector: fieldSelector(g[1]), Value: g[0]}
			},
		},
		{
			Pattern: regexp.MustCompile(`^I search for "(.+)" in the "(.+)" list$`),
			Build: func(g []string) ActionSpec {
				return ActionSpec{Kind: KindSearchInList, Target: g[1], Selector: elementSelector(g[1]), Value: g[0]}
			},
		},
		{
			Pattern: regexp.MustCompile(`^I browse the "(.+)" list$`),
			Build: func(g []string) ActionSpec {
				return ActionSpec{Kind: KindBrowseList, Target: g[0], Selector: elementSelector(g[0]), WaitMs: 2000}
			},
		},
		{
			Pattern: regexp.MustCompile(`^I am (?:logged in|authenticated)$`),
			Build: func(g []string) ActionSpec {
				return ActionSpec{Kind: KindEnsureAuth, Authenticated: true}
			},
		},
		{
			Pattern: regexp.MustCompile(`^I am (?:not logged in|logged out)$`),
			Build: func(g []string) ActionSpec {
				return ActionSpec{Kind: KindEnsureAuth, Authenticated: false}
			},
		},
		{
			Pattern: regexp.MustCompile(`^I wait (\d+) seconds?$`),
			Build: func(g []string) ActionSpec {
				secs, _ := strconv.Atoi(g[0])
				return ActionSpec{Kind: KindWait, WaitMs: secs * 1000}
			},
		},
		{
			Pattern: regexp.MustCompile(`^I (?:see|should see) the "(.+)"$`),
			Build: func(g []string) ActionSpec {
				return ActionSpec{Kind: KindAssertVisible, Target: g[0], Selector: elementSelector(g[0])}
			},
		},
		{
			Pattern: regexp.MustCompile(`^I click the "(.+)" button$`),
			Build: func(g []string) ActionSpec {
				return ActionSpec{Kind: KindClick, Target: g[0] + " button", Selector: elementSelector(g[0] + " button")}
			},
		},
		// Generic click: unanchored tail, so it also matches every text the
		// button shape above matches. It stays last; table order is the
		// tie-break.
		{
			Pattern: regexp.MustCompile(`^I click (?:on )?the "(.+)"`),
			Build: func(g []string) ActionSpec {
				return ActionSpec{Kind: KindClick, Target: g[0], Selector: elementSelector(g[0])}
			},
		},
	}
}
