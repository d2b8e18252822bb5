// Package explore owns the interactive filter state of a lineage view and
// turns it into positioned, styled view records.
//
// A [Controller] is the single writer of a [filter.State]. UI events arrive
// either as method calls or as serialized [Action] values passed to
// [Controller.Apply], so the HTTP API and the terminal explorer share one
// dispatcher. Every transition replaces the state wholesale; the universe is
// never modified.
//
// [Controller.View] runs visibility, layout, and highlighting from scratch for
// the current state. Only visible tables are laid out, in universe order, so
// the same subset always receives the same positions.
//
// A Controller is not safe for concurrent use. Callers serving several
// goroutines guard it with a mutex.
package explore
