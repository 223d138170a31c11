package module

import (
	"testing"

	"seedsearch/internal/modkit"
	mod "seedsearch/internal/modkit/module"
	"seedsearch/internal/platform/config"
	perr "seedsearch/internal/platform/errors"
	fdom "seedsearch/internal/services/filters/domain"
	fmodule "seedsearch/internal/services/filters/module"
	sdom "seedsearch/internal/services/search/domain"
	smodule "seedsearch/internal/services/search/module"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromConfig(t *testing.T) {
	t.Setenv("CORE_VALIDATE_PERMISSIVE_THRESHOLD", "4")
	o := FromConfig(config.New())
	assert.Equal(t, 1, o.BatchSize)
	assert.Equal(t, 4, o.PermissiveThreshold)
}

func TestNew_NeedsDependencies(t *testing.T) {
	_, err := New(modkit.Deps{}, Options{})
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))

	_, err = New(modkit.Deps{Registry: mod.NewRegistry()}, Options{})
	assert.True(t, perr.IsCode(err, perr.ErrorCodeNotFound))
}

func TestNew_Wires(t *testing.T) {
	reg := mod.NewRegistry()
	deps := modkit.Deps{Registry: reg}

	fm, err := fmodule.New(deps, fmodule.Options{Dir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = fm.Close(t.Context()) })

	k := sdom.KernelFunc(func(string, *fdom.Filter) (sdom.Evaluation, error) { return sdom.Evaluation{}, nil })
	_, err = smodule.New(deps, smodule.Options{Kernel: k})
	require.NoError(t, err)

	m, err := New(deps, Options{})
	require.NoError(t, err)
	assert.Equal(t, Name, m.Name())
	ports := mod.MustPortsAs[Ports](reg, Name)
	assert.NotNil(t, ports.Controller)
}
