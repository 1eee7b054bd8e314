package extractor

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RawCrate is the top-level shape of `cargo rustdoc`'s JSON output,
// targeting the externally-tagged Inner encoding (one object key per
// variant) used through rustdoc JSON's format_version ~23 - grounded on
// the teacher's internal/docs/types.go RustdocCrate, with Visibility and
// Span added (fields the teacher's docs indexer never needed, since it
// only cares about public items, but the core does per §3's visibility
// policy).
type RawCrate struct {
	Root           string                     `json:"root"`
	CrateVersion   *string                    `json:"crate_version"`
	Index          map[string]RawItem         `json:"index"`
	Paths          map[string]RawSummary      `json:"paths"`
	ExternalCrates map[string]RawExternalCrate `json:"external_crates"`
	FormatVersion  int                        `json:"format_version"`
}

type RawExternalCrate struct {
	Name string `json:"name"`
}

type RawSummary struct {
	CrateID int      `json:"crate_id"`
	Path    []string `json:"path"`
	Kind    string   `json:"kind"`
}

type RawSpan struct {
	Filename string `json:"filename"`
	Begin    [2]int `json:"begin"`
	End      [2]int `json:"end"`
}

// RawVisibility decodes both the bare-string ("public"/"crate"/"default")
// and the {"restricted": {...}} object forms rustdoc JSON uses.
type RawVisibility struct {
	Simple     string
	Restricted *struct {
		Parent string `json:"parent"`
		Path   string `json:"path"`
	}
}

func (v *RawVisibility) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v.Simple = s
		return nil
	}
	var obj struct {
		Restricted struct {
			Parent string `json:"parent"`
			Path   string `json:"path"`
		} `json:"restricted"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decoding visibility: %w", err)
	}
	v.Restricted = &obj.Restricted
	return nil
}

type RawItem struct {
	ID         string          `json:"id"`
	CrateID    int             `json:"crate_id"`
	Name       *string         `json:"name"`
	Span       *RawSpan        `json:"span"`
	Visibility RawVisibility   `json:"visibility"`
	Docs       *string         `json:"docs"`
	Inner      json.RawMessage `json:"inner"`
}

// innerTag returns the single discriminating key of item's Inner object
// and its raw payload, the same single-key dispatch the teacher's
// innerKind uses.
func innerTag(inner json.RawMessage) (string, json.RawMessage, bool) {
	if len(inner) == 0 {
		return "", nil, false
	}
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(inner, &outer); err != nil || len(outer) != 1 {
		return "", nil, false
	}
	for k, v := range outer {
		return k, v, true
	}
	return "", nil, false
}

// --- Inner payload shapes, raw rustdoc JSON side ---

type rawModule struct {
	IsCrateRoot bool     `json:"is_crate_root"`
	Items       []string `json:"items"`
}

type rawGenerics struct {
	Params []rawGenericParam `json:"params"`
	Where  []json.RawMessage `json:"where_predicates"`
}

type rawGenericParam struct {
	Name string          `json:"name"`
	Kind json.RawMessage `json:"kind"`
}

type rawStruct struct {
	Kind     string          `json:"kind"`
	Generics rawGenerics     `json:"generics"`
	Fields   []string        `json:"fields"`
	Impls    []string        `json:"impls"`
}

type rawEnum struct {
	Generics rawGenerics `json:"generics"`
	Variants []string    `json:"variants"`
	Impls    []string    `json:"impls"`
}

type rawUnion struct {
	Generics rawGenerics `json:"generics"`
	Fields   []string    `json:"fields"`
	Impls    []string    `json:"impls"`
}

type rawVariant struct {
	Kind         json.RawMessage `json:"kind"` // "plain" | {"tuple": [...]} | {"struct": {"fields": [...]}}
	Discriminant *struct {
		Expr  string `json:"expr"`
		Value string `json:"value"`
	} `json:"discriminant"`
}

type rawTrait struct {
	Items    []string          `json:"items"`
	Generics rawGenerics       `json:"generics"`
	Bounds   []json.RawMessage `json:"bounds"`
}

type rawTraitAlias struct {
	Generics rawGenerics       `json:"generics"`
	Params   []json.RawMessage `json:"params"`
}

type rawFunction struct {
	Sig struct {
		Inputs [][2]json.RawMessage `json:"inputs"`
		Output json.RawMessage      `json:"output"`
	} `json:"sig"`
	Generics rawGenerics `json:"generics"`
	Header   struct {
		Const  bool   `json:"const"`
		Async  bool   `json:"async"`
		Unsafe bool   `json:"unsafe"`
		ABI    json.RawMessage `json:"abi"`
	} `json:"header"`
	HasBody bool `json:"has_body"`
}

type rawConstant struct {
	Type  json.RawMessage `json:"type"`
	Const struct {
		Expr string `json:"expr"`
	} `json:"const"`
}

type rawStatic struct {
	Type    json.RawMessage `json:"type"`
	Mutable bool            `json:"mutable"`
	Expr    string          `json:"expr"`
}

type rawTypeAlias struct {
	Type     json.RawMessage `json:"type"`
	Generics rawGenerics     `json:"generics"`
}

type rawUse struct {
	Source string  `json:"source"`
	Name   string  `json:"name"`
	ID     *string `json:"id"`
	Glob   bool    `json:"glob"`
}

type rawMacro string

type rawProcMacro struct {
	Kind string `json:"kind"` // "bang" | "attr" | "derive"
}

type rawImpl struct {
	Generics    rawGenerics      `json:"generics"`
	Trait       *json.RawMessage `json:"trait"`
	For         json.RawMessage  `json:"for"`
	Items       []string         `json:"items"`
	IsUnsafe    bool             `json:"is_unsafe"`
	Negative    bool             `json:"negative"`
	Synthetic   bool             `json:"synthetic"`
	BlanketImpl *json.RawMessage `json:"blanket_impl"`
}

// printGenerics renders a generics block to the pre-rendered <...> / where
// text form the core expects, best-effort (parameter kinds beyond simple
// bounds are flattened to their name).
func printGenerics(g rawGenerics) (params, where string) {
	if len(g.Params) > 0 {
		names := make([]string, 0, len(g.Params))
		for _, p := range g.Params {
			names = append(names, p.Name)
		}
		params = "<" + strings.Join(names, ", ") + ">"
	}
	if len(g.Where) > 0 {
		where = fmt.Sprintf("where /* %d predicates */", len(g.Where))
	}
	return
}
