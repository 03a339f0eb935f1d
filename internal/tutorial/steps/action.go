// Package steps classifies scenario steps and resolves action steps to
// concrete automation primitives.
package steps

import "fmt"

// Kind identifies the automation primitive of an ActionSpec.
type Kind string

const (
	KindNavigate      Kind = "navigate"
	KindClick         Kind = "click"
	KindFill          Kind = "fill"
	KindAssertVisible Kind = "assert-visible"
	KindWait          Kind = "wait"
	KindSearchInList  Kind = "search-in-list"
	KindBrowseList    Kind = "browse-list"
	KindEnsureAuth    Kind = "ensure-auth"
	KindNoop          Kind = "noop"
)

// ActionSpec is the resolved, structured form of one action step. The set of
// kinds is closed; consumers match exhaustively on Kind.
type ActionSpec struct {
	Kind Kind `json:"kind"`

	// Target is the human name from the step text (page, element or field).
	Target string `json:"target,omitempty"`
	// Selector is the resolved CSS/XPath selector for element-directed kinds.
	Selector string `json:"selector,omitempty"`
	// Path is the route for KindNavigate, relative to the base URL.
	Path string `json:"path,omitempty"`
	// Value is the text for KindFill and the query for KindSearchInList.
	Value string `json:"value,omitempty"`
	// WaitMs applies to KindWait, KindBrowseList and KindNoop.
	WaitMs int `json:"wait_ms,omitempty"`
	// Authenticated applies to KindEnsureAuth.
	Authenticated bool `json:"authenticated,omitempty"`
}

func (a ActionSpec) String() string {
	switch a.Kind {
	case KindNavigate:
		return fmt.Sprintf("navigate %s", a.Path)
	case KindClick, KindAssertVisible, KindSearchInList, KindBrowseList:
		return fmt.Sprintf("%s %q", a.Kind, a.Target)
	case KindFill:
		return fmt.Sprintf("fill %q with %q", a.Target, a.Value)
	case KindWait, KindNoop:
		return fmt.Sprintf("%s %dms", a.Kind, a.WaitMs)
	case KindEnsureAuth:
		if a.Authenticated {
			return "ensure authenticated"
		}
		return "ensure unauthenticated"
	default:
		return string(a.Kind)
	}
}
