package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Ткань, 1 кат.", "ткань 1 кат"},
		{"ткань 1 кат", "ткань 1 кат"},
		// дефис вычищается, не превращается в пробел
		{"  ППУ   ST-2536 ", "ппу st2536"},
		{"ППУ ST2536", "ппу st2536"},
		{"ДСП 16мм (ламинированная)", "дсп 16мм ламинированная"},
		{"Velvet Lux / бежевый", "velvet lux бежевый"},
		{"", ""},
		{"!!!", ""},
		{"Механизм\tтрансформации\n«Еврокнижка»", "механизм трансформации еврокнижка"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeName(c.in), "input %q", c.in)
	}
}

func TestNormalizeNameEquivalence(t *testing.T) {
	// варианты написания одного материала должны схлопываться
	variants := []string{"Ткань, 1 кат.", "ткань 1 кат", "ТКАНЬ  1  КАТ", "Ткань 1 кат!"}
	want := NormalizeName(variants[0])
	for _, v := range variants[1:] {
		assert.Equal(t, want, NormalizeName(v), "variant %q", v)
	}
}
