package domain

import (
	"sort"
	"strings"
)

// Direction tags an argument as flowing into or out of a call
type Direction string

const (
	DirectionNone Direction = ""
	DirectionIn   Direction = "in"
	DirectionOut  Direction = "out"
)

// Access is the access mode of a property
type Access string

const (
	AccessRead      Access = "read"
	AccessWrite     Access = "write"
	AccessReadWrite Access = "readwrite"
)

// Valid reports whether a is one of the three modes the bus defines
func (a Access) Valid() bool {
	switch a {
	case AccessRead, AccessWrite, AccessReadWrite:
		return true
	}
	return false
}

// ServiceRecord is everything discovered for one bus name
type ServiceRecord struct {
	Name    string         `json:"name" yaml:"name"`
	Owner   string         `json:"owner,omitempty" yaml:"owner,omitempty"`
	Objects []ObjectRecord `json:"objects" yaml:"objects"`
	Error   *Fault         `json:"error,omitempty" yaml:"error,omitempty"`
}

// ObjectRecord is the decoded introspection of one object path
type ObjectRecord struct {
	Path       string            `json:"path" yaml:"path"`
	Interfaces []InterfaceRecord `json:"interfaces" yaml:"interfaces"`
	Error      *Fault            `json:"error,omitempty" yaml:"error,omitempty"`

	// Children holds the child segments advertised by the schema. Only the
	// walker reads it.
	Children []string `json:"-" yaml:"-"`
}

// InterfaceRecord is one named group of members on an object
type InterfaceRecord struct {
	Name        string           `json:"name" yaml:"name"`
	Methods     []MethodRecord   `json:"methods" yaml:"methods"`
	Properties  []PropertyRecord `json:"properties" yaml:"properties"`
	Signals     []SignalRecord   `json:"signals" yaml:"signals"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
}

// MethodRecord describes a callable method
type MethodRecord struct {
	Name        string     `json:"name" yaml:"name"`
	Args        []Argument `json:"args" yaml:"args"`
	Returns     []Argument `json:"returns" yaml:"returns"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
}

// PropertyRecord describes a property
type PropertyRecord struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Access      Access `json:"access" yaml:"access"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// SignalRecord describes a signal
type SignalRecord struct {
	Name        string     `json:"name" yaml:"name"`
	Args        []Argument `json:"args" yaml:"args"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
}

// Argument is a single method or signal argument. Type is an opaque
// signature string.
type Argument struct {
	Name        string    `json:"name,omitempty" yaml:"name,omitempty"`
	Type        string    `json:"type" yaml:"type"`
	Direction   Direction `json:"direction,omitempty" yaml:"direction,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
}

// String renders the argument as name:type, or just the type when unnamed
func (a Argument) String() string {
	if a.Name == "" {
		return a.Type
	}
	return a.Name + ":" + a.Type
}

// HasContent reports whether the interface declares any member
func (i InterfaceRecord) HasContent() bool {
	return len(i.Methods) > 0 || len(i.Properties) > 0 || len(i.Signals) > 0
}

// HasContent reports whether any interface on the object declares a member.
// Objects without content only exist to reach their children.
func (o ObjectRecord) HasContent() bool {
	for _, iface := range o.Interfaces {
		if iface.HasContent() {
			return true
		}
	}
	return false
}

// InterfacesWithContent counts interfaces that declare at least one member
func (o ObjectRecord) InterfacesWithContent() int {
	n := 0
	for _, iface := range o.Interfaces {
		if iface.HasContent() {
			n++
		}
	}
	return n
}

// Failed reports whether the object could not be introspected or decoded
func (o ObjectRecord) Failed() bool {
	return o.Error != nil
}

// Paths returns the visited object paths in discovery order
func (s ServiceRecord) Paths() []string {
	paths := make([]string, 0, len(s.Objects))
	for _, obj := range s.Objects {
		paths = append(paths, obj.Path)
	}
	return paths
}

// SortedObjects returns the successfully decoded objects ordered by path,
// one entry per path
func (s ServiceRecord) SortedObjects() []ObjectRecord {
	seen := make(map[string]bool, len(s.Objects))
	objects := make([]ObjectRecord, 0, len(s.Objects))
	for _, obj := range s.Objects {
		if obj.Failed() || seen[obj.Path] {
			continue
		}
		seen[obj.Path] = true
		objects = append(objects, obj)
	}
	sort.Slice(objects, func(i, j int) bool {
		return objects[i].Path < objects[j].Path
	})
	return objects
}

// FailedObjects returns the objects that carry an error, in discovery order
func (s ServiceRecord) FailedObjects() []ObjectRecord {
	var failed []ObjectRecord
	for _, obj := range s.Objects {
		if obj.Failed() {
			failed = append(failed, obj)
		}
	}
	return failed
}

// ChildrenOf returns the successfully decoded objects exactly one segment
// below parent, ordered by path
func (s ServiceRecord) ChildrenOf(parent string) []ObjectRecord {
	prefix := parent
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var children []ObjectRecord
	for _, obj := range s.Objects {
		if obj.Failed() || obj.Path == parent || !strings.HasPrefix(obj.Path, prefix) {
			continue
		}
		rest := strings.TrimPrefix(obj.Path, prefix)
		if rest == "" || strings.Contains(rest, "/") {
			continue
		}
		children = append(children, obj)
	}
	sort.Slice(children, func(i, j int) bool {
		return children[i].Path < children[j].Path
	})
	return children
}

// ObjectView is a single object together with its direct children, as
// found by walking the owning service
type ObjectView struct {
	Service  string         `json:"service" yaml:"service"`
	Owner    string         `json:"owner,omitempty" yaml:"owner,omitempty"`
	Object   ObjectRecord   `json:"object" yaml:"object"`
	Children []ObjectRecord `json:"children" yaml:"children"`
}

// JoinPath appends a child segment to an object path
func JoinPath(parent, segment string) string {
	if parent == RootPath {
		return RootPath + segment
	}
	return parent + "/" + segment
}

// RootPath is where every walk starts
const RootPath = "/"
