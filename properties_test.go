package tmx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func parsePropertiesXML(t *testing.T, decls ...xmlProperty) (Properties, error) {
	t.Helper()
	return buildProperties(&xmlProperties{Properties: decls})
}

func strptr(s string) *string { return &s }

func TestTypedProperties(t *testing.T) {
	props, err := parsePropertiesXML(t,
		xmlProperty{Name: strptr("name"), Value: strptr("spawn")},
		xmlProperty{Name: strptr("hp"), Type: "int", Value: strptr("42")},
		xmlProperty{Name: strptr("speed"), Type: "float", Value: strptr("1.5")},
		xmlProperty{Name: strptr("solid"), Type: "bool", Value: strptr("true")},
		xmlProperty{Name: strptr("open"), Type: "bool", Value: strptr("false")},
		xmlProperty{Name: strptr("tint"), Type: "color", Value: strptr("#ff83947b")},
		xmlProperty{Name: strptr("script"), Type: "file", Value: strptr("scripts/door.lua")},
		xmlProperty{Name: strptr("target"), Type: "object", Value: strptr("17")},
	)
	assert.Nil(t, err)

	s, ok := props.String("name")
	assert.True(t, ok)
	assert.Equal(t, "spawn", s)

	i, ok := props.Int("hp")
	assert.True(t, ok)
	assert.Equal(t, 42, i)

	f, ok := props.Float("speed")
	assert.True(t, ok)
	assert.Equal(t, 1.5, f)

	b, ok := props.Bool("solid")
	assert.True(t, ok)
	assert.True(t, b)

	b, ok = props.Bool("open")
	assert.True(t, ok)
	assert.False(t, b)

	c, ok := props.Color("tint")
	assert.True(t, ok)
	assert.Equal(t, Color{A: 0xff, R: 0x83, G: 0x94, B: 0x7b}, c)

	file, ok := props.File("script")
	assert.True(t, ok)
	assert.Equal(t, "scripts/door.lua", file)

	ref, ok := props.ObjectRef("target")
	assert.True(t, ok)
	assert.Equal(t, 17, ref)
}

func TestPropertyTypeMismatchAccess(t *testing.T) {
	props, err := parsePropertiesXML(t,
		xmlProperty{Name: strptr("hp"), Type: "int", Value: strptr("42")},
	)
	assert.Nil(t, err)

	_, ok := props.String("hp")
	assert.False(t, ok)
	_, ok = props.Int("missing")
	assert.False(t, ok)
}

func TestPropertyColorWithoutAlpha(t *testing.T) {
	props, err := parsePropertiesXML(t,
		xmlProperty{Name: strptr("tint"), Type: "color", Value: strptr("#83947b")},
	)
	assert.Nil(t, err)

	c, _ := props.Color("tint")
	assert.Equal(t, Color{A: 0xff, R: 0x83, G: 0x94, B: 0x7b}, c)
}

func TestPropertyInvalidValues(t *testing.T) {
	cases := []xmlProperty{
		{Name: strptr("x"), Type: "int", Value: strptr("abc")},
		{Name: strptr("x"), Type: "float", Value: strptr("--1")},
		{Name: strptr("x"), Type: "bool", Value: strptr("TRUE")},
		{Name: strptr("x"), Type: "bool", Value: strptr("1")},
		{Name: strptr("x"), Type: "color", Value: strptr("#12345")},
		{Name: strptr("x"), Type: "color", Value: strptr("red")},
		{Name: strptr("x"), Type: "object", Value: strptr("first")},
	}
	for _, decl := range cases {
		_, err := parsePropertiesXML(t, decl)
		assert.ErrorIs(t, err, ErrInvalidPropertyValue)
	}
}

func TestPropertyUnknownType(t *testing.T) {
	_, err := parsePropertiesXML(t,
		xmlProperty{Name: strptr("x"), Type: "matrix", Value: strptr("1")},
	)
	assert.ErrorIs(t, err, ErrInvalidPropertyType)
}

func TestPropertyMissingName(t *testing.T) {
	_, err := parsePropertiesXML(t, xmlProperty{Value: strptr("1")})
	assert.ErrorIs(t, err, ErrMissingAttribute)
}

func TestPropertyDuplicateName(t *testing.T) {
	_, err := parsePropertiesXML(t,
		xmlProperty{Name: strptr("hp"), Type: "int", Value: strptr("42")},
		xmlProperty{Name: strptr("hp"), Type: "int", Value: strptr("7")},
	)
	assert.ErrorIs(t, err, ErrDuplicateProperty)
}

func TestPropertyMultilineString(t *testing.T) {
	props, err := parsePropertiesXML(t,
		xmlProperty{Name: strptr("note"), Inline: "line one\nline two"},
	)
	assert.Nil(t, err)

	s, _ := props.String("note")
	assert.Equal(t, "line one\nline two", s)
}

func TestPropertyClass(t *testing.T) {
	props, err := parsePropertiesXML(t, xmlProperty{
		Name:         strptr("loot"),
		Type:         "class",
		PropertyType: "LootTable",
		Nested: &xmlProperties{Properties: []xmlProperty{
			{Name: strptr("rolls"), Type: "int", Value: strptr("3")},
			{Name: strptr("table"), Value: strptr("common")},
		}},
	})
	assert.Nil(t, err)

	class, ok := props.Class("loot")
	assert.True(t, ok)
	assert.Equal(t, "LootTable", class.Type)

	rolls, _ := class.Members.Int("rolls")
	assert.Equal(t, 3, rolls)
	table, _ := class.Members.String("table")
	assert.Equal(t, "common", table)
}
