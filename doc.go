// Package defcell lets a function's default argument values be changed
// after the function is wrapped, without touching the function's body.
//
// # Overview
//
// Defcell organizes code around three core concepts:
//
//  1. Cells: named, mutable value holders usable as parameter defaults
//  2. The registry: a process-wide name-to-cell mapping with one cell per name
//  3. Wrappers: synthesized callables that resolve cell-backed defaults live
//
// # Basic Usage
//
// Register a cell and use it as a default:
//
//	timeout := defcell.NewCell("timeout", 30)
//
//	request := defcell.MustWrap(
//	    func(url string, timeout int) (string, error) { ... },
//	    defcell.NewSignature(
//	        defcell.Pos("url"),
//	        defcell.Pos("timeout", defcell.WithDefault(timeout)),
//	    ),
//	)
//
//	request.Call("https://example.com")        // timeout = 30
//	timeout.Set(5)
//	request.Call("https://example.com")        // timeout = 5
//	request.Call("https://example.com", 60)    // explicit 60 wins
//
// # Cells and the Registry
//
// NewCell is create-or-fetch: the first registration of a name wins, and
// later calls return the existing cell with the new value ignored. Updating
// goes through Set, never through re-registration:
//
//	a := defcell.NewCell("retries", 3)
//	b := defcell.NewCell("retries", 99)   // a == b, value still 3
//	b.Set(5)                              // now both see 5
//
// Lookup fetches without creating and fails with NotRegisteredError for
// unknown names. Cells notify subscribers synchronously, in subscription
// order, on every Set:
//
//	cell.Connect(func(v any) error {
//	    fmt.Println("changed to", v)
//	    return nil
//	})
//
// A subscriber error aborts dispatch and is returned from Set.
//
// # Parameter Classes
//
// A wrapped function's declaration spans five parameter classes, binding
// exactly as declared:
//
//	sig := defcell.NewSignature(
//	    defcell.PosOnly("src"),                               // by position only
//	    defcell.Pos("count", defcell.WithDefault(cell)),      // position or name
//	    defcell.VarPos("rest"),                               // extra positionals
//	    defcell.KwOnly("mode", defcell.WithDefault("fast")),  // by name only
//	    defcell.VarKw("extra"),                               // extra keywords
//	)
//
//	f := defcell.MustWrap(
//	    func(src string, count int, rest []int, mode string, extra map[string]any) int { ... },
//	    sig,
//	)
//
//	f.CallNamed([]any{"s", 2, 7, 8}, map[string]any{"mode": "slow", "x": 1})
//
// # Introspection
//
// The wrapper's observable parameter list is identical to the declaration,
// except that cell-backed defaults are displayed as the cell's current
// value, never as the cell reference:
//
//	f.Params()     // descriptors with snapshot defaults
//	f.Signature()  // rendered declaration with live defaults
//
// # Documentation Binding
//
// A documentation template can be attached and kept current as cells
// change:
//
//	f := defcell.MustWrap(fn, sig,
//	    defcell.WithDoc("retries {{.retries}} times"),
//	)
//	f.Doc()        // re-rendered on every cell change
//
// WithDocFormat(false) renders once at wrap time; RefreshDoc re-renders on
// demand.
//
// # Errors
//
// All failures are synchronous and typed: NotRegisteredError and
// RegistrationConflictError from the registry, UninspectableError,
// SignatureMismatchError and NameCollisionError at wrap time, BindError at
// call time. Wrap-time failures mean no wrapper is installed at all.
//
// # Thread Safety
//
// Registry and cell operations are guarded by mutexes and safe for
// concurrent use. Updates to distinct cells are independent; there is no
// coordinated update across multiple cells.
package defcell
