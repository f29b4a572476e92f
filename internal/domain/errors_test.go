package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFaultWrapUnwrap(t *testing.T) {
	root := errors.New("root")
	err := NewFault(KindIntrospection, "introspection failed", root).At("com.example.Foo", "/a")

	assert.True(t, errors.Is(err, root))
	assert.Equal(t, "introspection failed: root", err.Error())
	assert.Equal(t, "com.example.Foo", err.Service)
	assert.Equal(t, "/a", err.Path)

	var got *Fault
	require.True(t, errors.As(fmt.Errorf("outer: %w", err), &got))
	assert.Equal(t, KindIntrospection, got.Kind)
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewFault(KindConnection, "bus unreachable", nil))

	assert.True(t, IsKind(err, KindConnection))
	assert.False(t, IsKind(err, KindParse))
	assert.False(t, IsKind(errors.New("plain"), KindConnection))
	assert.Equal(t, KindConnection, KindOf(err))
	assert.Equal(t, FaultKind(""), KindOf(errors.New("plain")))
}

func TestFaultDetailSurvivesEncoding(t *testing.T) {
	err := NewFault(KindIntrospection, "Introspection failed", errors.New("Did not receive a reply")).At("com.example.Foo", "/z")

	data, marshalErr := json.Marshal(err)
	require.NoError(t, marshalErr)
	assert.Contains(t, string(data), `"detail":"Did not receive a reply"`)

	var decoded Fault
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Nil(t, decoded.Err)
	assert.Equal(t, "Introspection failed: Did not receive a reply", decoded.Error())

	assert.Empty(t, NewFault(KindUnauthorized, "no accessible objects", nil).Detail)
}
