package lister

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/lambda-deploy/internal/domain/function"
	"github.com/oshokin/lambda-deploy/internal/service/registry"
)

// fakeRegistry returns scripted descriptors for listing.
type fakeRegistry struct {
	descriptors []function.Descriptor
	err         error
}

func (f *fakeRegistry) Get(_ context.Context, _ string) (*function.Descriptor, error) {
	return nil, registry.ErrNotFound
}

func (f *fakeRegistry) Create(_ context.Context, target *function.Target, _ []byte) (*function.Descriptor, error) {
	return &function.Descriptor{Name: target.Name}, nil
}

func (f *fakeRegistry) Update(_ context.Context, target *function.Target, _ []byte) (*function.Descriptor, error) {
	return &function.Descriptor{Name: target.Name}, nil
}

func (f *fakeRegistry) List(_ context.Context) ([]function.Descriptor, error) {
	return f.descriptors, f.err
}

// TestListOrder prints descriptors in registry order.
func TestListOrder(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{descriptors: []function.Descriptor{
		{Name: "zeta"},
		{Name: "alpha"},
	}}

	var out bytes.Buffer

	require.NoError(t, List(context.Background(), reg, &out))

	printed := out.String()
	require.Less(t, strings.Index(printed, "zeta"), strings.Index(printed, "alpha"))
}

// TestListFailure propagates registry failures.
func TestListFailure(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{err: registry.ErrAuth}

	err := List(context.Background(), reg, &bytes.Buffer{})
	require.Error(t, err)
	require.True(t, errors.Is(err, registry.ErrAuth))
}
