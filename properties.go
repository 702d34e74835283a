package tmx

import (
	"fmt"
	"strconv"
	"strings"
)

// Property type tags as they appear in map files.
const (
	PropString = "string"
	PropInt    = "int"
	PropFloat  = "float"
	PropBool   = "bool"
	PropColor  = "color"
	PropFile   = "file"
	PropObject = "object"
	PropClass  = "class"
)

// PropertyKind discriminates the variants of a PropertyValue.
type PropertyKind int

const (
	KindString PropertyKind = iota
	KindInt
	KindFloat
	KindBool
	KindColor
	KindFile
	KindObject
	KindClass
)

func (k PropertyKind) String() string {
	switch k {
	case KindString:
		return PropString
	case KindInt:
		return PropInt
	case KindFloat:
		return PropFloat
	case KindBool:
		return PropBool
	case KindColor:
		return PropColor
	case KindFile:
		return PropFile
	case KindObject:
		return PropObject
	case KindClass:
		return PropClass
	}
	return "unknown"
}

// PropertyValue is one typed property value. Exactly one variant is set;
// use Kind plus the matching accessor, or the typed getters on Properties.
type PropertyValue struct {
	kind  PropertyKind
	str   string // string, file
	num   int    // int, object ref
	real  float64
	b     bool
	color Color
	class *Class
}

// Class is the value of a class-typed property: a named, nested property set.
type Class struct {
	Type    string
	Members Properties
}

// Kind returns the variant held by this value.
func (v PropertyValue) Kind() PropertyKind { return v.kind }

// AsString returns the string variant.
func (v PropertyValue) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsInt returns the int variant.
func (v PropertyValue) AsInt() (int, bool) { return v.num, v.kind == KindInt }

// AsFloat returns the float variant.
func (v PropertyValue) AsFloat() (float64, bool) { return v.real, v.kind == KindFloat }

// AsBool returns the bool variant.
func (v PropertyValue) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsColor returns the color variant.
func (v PropertyValue) AsColor() (Color, bool) { return v.color, v.kind == KindColor }

// AsFile returns the file variant: a relative path, never resolved or opened.
func (v PropertyValue) AsFile() (string, bool) { return v.str, v.kind == KindFile }

// AsObjectRef returns the object reference variant. 0 means "no object".
func (v PropertyValue) AsObjectRef() (int, bool) { return v.num, v.kind == KindObject }

// AsClass returns the class variant.
func (v PropertyValue) AsClass() (*Class, bool) {
	if v.kind != KindClass {
		return nil, false
	}
	return v.class, true
}

// Properties is a set of named, typed values. Names are unique within a set.
type Properties map[string]PropertyValue

// Get returns the value for name.
func (p Properties) Get(name string) (PropertyValue, bool) {
	v, ok := p[name]
	return v, ok
}

// String returns the string property `name`, if one is set.
func (p Properties) String(name string) (string, bool) {
	return p[name].AsString()
}

// Int returns the int property `name`, if one is set.
func (p Properties) Int(name string) (int, bool) {
	return p[name].AsInt()
}

// Float returns the float property `name`, if one is set.
func (p Properties) Float(name string) (float64, bool) {
	return p[name].AsFloat()
}

// Bool returns the bool property `name`, if one is set.
func (p Properties) Bool(name string) (bool, bool) {
	return p[name].AsBool()
}

// Color returns the color property `name`, if one is set.
func (p Properties) Color(name string) (Color, bool) {
	return p[name].AsColor()
}

// File returns the file property `name`, if one is set.
func (p Properties) File(name string) (string, bool) {
	return p[name].AsFile()
}

// ObjectRef returns the object reference property `name`, if one is set.
func (p Properties) ObjectRef(name string) (int, bool) {
	return p[name].AsObjectRef()
}

// Class returns the class property `name`, if one is set.
func (p Properties) Class(name string) (*Class, bool) {
	return p[name].AsClass()
}

// plain flattens the set into JSON-encodable values for the placement store.
func (p Properties) plain() map[string]interface{} {
	out := map[string]interface{}{}
	for name, v := range p {
		switch v.kind {
		case KindString, KindFile:
			out[name] = v.str
		case KindInt, KindObject:
			out[name] = v.num
		case KindFloat:
			out[name] = v.real
		case KindBool:
			out[name] = v.b
		case KindColor:
			out[name] = v.color.String()
		case KindClass:
			out[name] = v.class.Members.plain()
		}
	}
	return out
}

// xmlProperties mirrors a <properties> element.
type xmlProperties struct {
	Properties []xmlProperty `xml:"property"`
}

type xmlProperty struct {
	Name         *string        `xml:"name,attr"`
	Type         string         `xml:"type,attr"`
	PropertyType string         `xml:"propertytype,attr"`
	Value        *string        `xml:"value,attr"`
	Nested       *xmlProperties `xml:"properties"`
	Inline       string         `xml:",chardata"`
}

// buildProperties turns declared properties into a typed set. Pure: it never
// touches anything beyond its input.
func buildProperties(in *xmlProperties) (Properties, error) {
	props := Properties{}
	if in == nil {
		return props, nil
	}
	for _, decl := range in.Properties {
		if decl.Name == nil {
			return nil, missingAttr("property", "name")
		}
		if _, exists := props[*decl.Name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateProperty, *decl.Name)
		}
		v, err := buildPropertyValue(decl)
		if err != nil {
			return nil, err
		}
		props[*decl.Name] = v
	}
	return props, nil
}

func buildPropertyValue(decl xmlProperty) (PropertyValue, error) {
	// Multi-line strings are written as element text rather than a value
	// attribute.
	value := decl.Inline
	if decl.Value != nil {
		value = *decl.Value
	}

	badValue := func(expected string) error {
		return fmt.Errorf("%w: property %q is not a valid %s: %q",
			ErrInvalidPropertyValue, *decl.Name, expected, value)
	}

	switch decl.Type {
	case "", PropString:
		return PropertyValue{kind: KindString, str: value}, nil
	case PropInt:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return PropertyValue{}, badValue(PropInt)
		}
		return PropertyValue{kind: KindInt, num: n}, nil
	case PropFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return PropertyValue{}, badValue(PropFloat)
		}
		return PropertyValue{kind: KindFloat, real: f}, nil
	case PropBool:
		switch value {
		case "true":
			return PropertyValue{kind: KindBool, b: true}, nil
		case "false":
			return PropertyValue{kind: KindBool, b: false}, nil
		}
		return PropertyValue{}, badValue(PropBool)
	case PropColor:
		c, err := parseColor(value)
		if err != nil {
			return PropertyValue{}, badValue(PropColor)
		}
		return PropertyValue{kind: KindColor, color: c}, nil
	case PropFile:
		return PropertyValue{kind: KindFile, str: value}, nil
	case PropObject:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return PropertyValue{}, badValue(PropObject)
		}
		return PropertyValue{kind: KindObject, num: n}, nil
	case PropClass:
		members, err := buildProperties(decl.Nested)
		if err != nil {
			return PropertyValue{}, err
		}
		return PropertyValue{
			kind:  KindClass,
			class: &Class{Type: decl.PropertyType, Members: members},
		}, nil
	}
	return PropertyValue{}, fmt.Errorf("%w: property %q declares type %q",
		ErrInvalidPropertyType, *decl.Name, decl.Type)
}
