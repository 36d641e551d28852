// Package nodes implements what each editor node produces when the graph runs.
//
// Prompt nodes assemble prefix, text and suffix and substitute the values
// arriving on their wildcard_ ports. The wildcard list node picks one of its
// values according to its output mode; sequential mode keeps a cursor per node
// for the life of the process. The combiner smart-joins its string_ inputs.
package nodes
