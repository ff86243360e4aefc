package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		node     Node
		expected string
	}{
		{String{}, "string"},
		{StringLit("a"), `"a"`},
		{NumberLit(-2.5), "-2.5"},
		{BigIntLit("7"), "7n"},
		{NewArray(NewUnion(String{}, Number{})), "(string | number)[]"},
		{NewTuple(String{}, Opt(Number{})), "[string, number?]"},
		{NewObject(Prop("a", String{}), Prop("b", RO(Opt(Number{})))), "{ a: string; readonly b?: number; }"},
		{NewObject(), "{}"},
		{NewClosedObject(Prop("a", Null{})), "{ a: null; [key: string]: never; }"},
		{NewRecord(String{}, Boolean{}), "Record<string, boolean>"},
		{NewFunction([]Node{String{}, Opt(Number{})}, Void{}), "(arg0: string, arg1?: number) => void"},
		{NewConstructor(nil, Ref{Name: "Point"}), "new () => Point"},
		{NewPromise(String{}), "Promise<string>"},
		{NewNot(NewUnion(String{}, Null{})), "not (string | null)"},
		{NewTemplate(Pattern{LiteralSegment{Text: "id-"}}), "`id-`"},
		{NewInfer("A", String{}), "infer A extends string"},
		{NewGeneric([]Param{{Name: "T", Constraint: String{}, Default: StringLit("x")}}, NewArray(Ref{Name: "T"})),
			`<T extends string = "x"> T[]`},
		{NewCall(Ref{Name: "Box"}, Number{}), "Box<number>"},
		{NewMapped("K", NewKeyOf(Ref{Name: "T"}), nil, Opt(NewIndex(Ref{Name: "T"}, Ref{Name: "K"}))),
			"{ [K in keyof T]: optional(T[K]) }"},
		{NewCyclic(map[string]Node{"B": Number{}, "A": NewArray(Ref{Name: "A"})}, "A"), "cyclic A { A = A[]; B = number }"},
		{NewUnion(), "never"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.node))
		})
	}
}
