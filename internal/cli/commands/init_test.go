package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clitestutil "github.com/leapstack-labs/leapbuild/internal/cli/testutil"
	sharedcfg "github.com/leapstack-labs/leapbuild/internal/config"
	"github.com/leapstack-labs/leapbuild/internal/testutil"
	"github.com/leapstack-labs/leapbuild/pkg/core"
	"github.com/leapstack-labs/leapbuild/pkg/resolve"
)

func TestRunInit(t *testing.T) {
	tests := []struct {
		name     string
		setupDir func(t *testing.T, dir string)
		opts     initOptions
		wantErr  bool
	}{
		{
			name: "init empty directory",
		},
		{
			name: "init existing config without force",
			setupDir: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "leapbuild.yaml"), []byte("existing"), 0600))
			},
			wantErr: true,
		},
		{
			name: "init existing yml without force",
			setupDir: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "leapbuild.yml"), []byte("existing"), 0600))
			},
			wantErr: true,
		},
		{
			name: "init existing config with force",
			setupDir: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "leapbuild.yaml"), []byte("existing: ["), 0600))
			},
			opts: initOptions{force: true},
		},
		{
			name: "overrides violate constraints",
			opts: initOptions{overrides: resolve.Layer{
				Name:   resolve.SourceFlags,
				Values: resolve.Values{resolve.KeyMinPlatformVersion: 40},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.setupDir != nil {
				tt.setupDir(t, dir)
			}

			opts := tt.opts
			opts.dir = dir
			tr := clitestutil.NewTestRendererMarkdown()

			err := runInit(tr.Renderer, testutil.NewTestLogger(t), opts)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, tr.Output(), "initialized")

			proj, err := sharedcfg.LoadFromDir(dir)
			require.NoError(t, err)
			require.NotNil(t, proj)

			got, err := resolve.New(proj.Config.Policy).ResolveLayers(
				sharedcfg.BuiltinDefaults().Values(), proj.Layer())
			require.NoError(t, err, "starter file must resolve")
			assert.Equal(t, sharedcfg.DefaultApplicationID, got.ApplicationID)
		})
	}
}

func TestRunInit_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "app")
	tr := clitestutil.NewTestRendererText()

	require.NoError(t, runInit(tr.Renderer, testutil.NewTestLogger(t), initOptions{dir: dir}))
	assert.FileExists(t, filepath.Join(dir, sharedcfg.ConfigFileName))
}

func TestRunInit_ForceKeepsExistingFileName(t *testing.T) {
	dir := t.TempDir()
	yml := filepath.Join(dir, sharedcfg.ConfigFileNameAlt)
	require.NoError(t, os.WriteFile(yml, []byte("android:\n  versionCode: seven\n"), 0600))
	tr := clitestutil.NewTestRendererText()

	require.NoError(t, runInit(tr.Renderer, testutil.NewTestLogger(t), initOptions{dir: dir, force: true}))

	assert.NoFileExists(t, filepath.Join(dir, sharedcfg.ConfigFileName))
	assert.Contains(t, tr.Output(), sharedcfg.ConfigFileNameAlt)

	proj, err := sharedcfg.LoadFromDir(dir)
	require.NoError(t, err)
	require.NotNil(t, proj)
	assert.Equal(t, yml, proj.Path)
	assert.NotEqual(t, "seven", proj.Config.Android[resolve.KeyVersionCode], "old content is replaced")
}

func TestRunInit_WritesOverrides(t *testing.T) {
	dir := t.TempDir()
	tr := clitestutil.NewTestRendererText()

	overrides := resolve.Values{
		resolve.KeyApplicationID:      "com.acme.app",
		resolve.KeyMinPlatformVersion: 23,
		resolve.KeySigningProfile:     "release",
	}
	opts := initOptions{
		dir:       dir,
		overrides: resolve.Layer{Name: resolve.SourceFlags, Values: overrides},
		policy:    core.Constraints{MinPlatformFloor: 23},
	}
	require.NoError(t, runInit(tr.Renderer, testutil.NewTestLogger(t), opts))

	proj, err := sharedcfg.LoadFromDir(dir)
	require.NoError(t, err)
	require.NotNil(t, proj)

	assert.Equal(t, 23, proj.Config.Policy.MinPlatformFloor)
	assert.Equal(t, "com.acme.app", proj.Config.Android[resolve.KeyApplicationID])
	assert.Equal(t, "release", proj.Config.Android[resolve.KeySigningProfile])
	// yaml would read an unquoted 27.0 as a float
	assert.Equal(t, sharedcfg.DefaultToolchainVersion, proj.Config.Android[resolve.KeyToolchainVersion])
	assert.NotContains(t, proj.Config.Android, resolve.KeyNamespace, "derived namespace is not written")
}

func TestStarterFile_Comments(t *testing.T) {
	d := core.BuildDescriptor{ApplicationID: "com.acme.app", Namespace: "com.acme", SigningProfile: core.SigningDebug}

	data, err := starterFile(d, core.Constraints{})
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "# Build properties.")
	assert.Contains(t, content, "namespace: com.acme")
	assert.Contains(t, content, "minPlatformFloor: 0")
	assert.Contains(t, content, "# 0 disables the floor")
}
