/*
Package ltl provides the linear temporal logic formulas consumed by the
automaton construction.

Formulas are immutable and hash-consed by value: every constructor returns a
node whose Key is canonical (operands of & and | are flattened, deduplicated
and sorted), so two formulas denote the same syntax tree iff their keys are
equal. Parse reads the usual textual syntax, Normalize brings a formula into
negation normal form over true, false, ap, !ap, &, |, X, U and R, and DNF
expands the boolean skeleton into clauses.
*/
package ltl
