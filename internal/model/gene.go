package model

import "fmt"

// Gene is the atomic unit of a chromosome. It is a value type; replacing a
// gene in a chromosome never mutates the gene previously stored there.
//
// Metadata is optional and opaque to every operator. Clones copy it
// shallowly, so it should hold immutable values.
type Gene struct {
	Value    any
	Metadata any
}

func NewGene(value any) Gene {
	return Gene{Value: value}
}

func NewGeneWithMetadata(value, metadata any) Gene {
	return Gene{Value: value, Metadata: metadata}
}

func (g Gene) String() string {
	if g.Value == nil {
		return ""
	}
	return fmt.Sprint(g.Value)
}
