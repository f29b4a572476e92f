package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinPath(t *testing.T) {
	tests := []struct {
		parent, segment, want string
	}{
		{"/", "name", "/name"},
		{"/a", "name", "/a/name"},
		{"/org/freedesktop", "DBus", "/org/freedesktop/DBus"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, JoinPath(tt.parent, tt.segment))
	}
}

func TestArgumentString(t *testing.T) {
	assert.Equal(t, "x:s", Argument{Name: "x", Type: "s"}.String())
	assert.Equal(t, "a{sv}", Argument{Type: "a{sv}"}.String())
}

func TestAccessValid(t *testing.T) {
	assert.True(t, AccessRead.Valid())
	assert.True(t, AccessWrite.Valid())
	assert.True(t, AccessReadWrite.Valid())
	assert.False(t, Access("execute").Valid())
	assert.False(t, Access("").Valid())
}

func TestObjectRecordHasContent(t *testing.T) {
	empty := ObjectRecord{
		Path:       "/a",
		Interfaces: []InterfaceRecord{{Name: "org.example.Empty"}},
	}
	assert.False(t, empty.HasContent())
	assert.Equal(t, 0, empty.InterfacesWithContent())

	full := ObjectRecord{
		Path: "/b",
		Interfaces: []InterfaceRecord{
			{Name: "org.example.Empty"},
			{Name: "org.example.Foo", Methods: []MethodRecord{{Name: "Ping"}}},
		},
	}
	assert.True(t, full.HasContent())
	assert.Equal(t, 1, full.InterfacesWithContent())
}

func TestServiceRecordViews(t *testing.T) {
	svc := ServiceRecord{
		Name: "com.example.Foo",
		Objects: []ObjectRecord{
			{Path: "/"},
			{Path: "/com/example/b"},
			{Path: "/com"},
			{Path: "/com/example"},
			{Path: "/com/example/a"},
			{Path: "/com/example/a/deep"},
			{Path: "/com/example/broken", Error: NewFault(KindAccessDenied, "denied", nil)},
		},
	}

	t.Run("sorted objects skip failures", func(t *testing.T) {
		var paths []string
		for _, obj := range svc.SortedObjects() {
			paths = append(paths, obj.Path)
		}
		assert.Equal(t, []string{"/", "/com", "/com/example", "/com/example/a", "/com/example/a/deep", "/com/example/b"}, paths)
	})

	t.Run("failed objects", func(t *testing.T) {
		failed := svc.FailedObjects()
		if assert.Len(t, failed, 1) {
			assert.Equal(t, "/com/example/broken", failed[0].Path)
		}
	})

	t.Run("direct children only", func(t *testing.T) {
		var paths []string
		for _, obj := range svc.ChildrenOf("/com/example") {
			paths = append(paths, obj.Path)
		}
		assert.Equal(t, []string{"/com/example/a", "/com/example/b"}, paths)
	})

	t.Run("children of root", func(t *testing.T) {
		children := svc.ChildrenOf("/")
		if assert.Len(t, children, 1) {
			assert.Equal(t, "/com", children[0].Path)
		}
	})
}
