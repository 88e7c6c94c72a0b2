// Package chunk splits a ChangeSet into size-bounded chunks for LLM
// consumption.
//
// Packing is greedy over whole files in discovery order; files larger than
// the budget are split on line boundaries into per-file sub-chunks carrying
// Part/Parts bookkeeping. The splitter is pure: no state survives a call,
// and identical inputs produce identical chunk sequences.
package chunk
