package cmdutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/forumtext/internal/config"
)

func newTestCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("config", "", "")
	cmd.Flags().Bool("no-color", false, "")
	cmd.Flags().String("log-level", "", "")
	cmd.Flags().String("format", "", "")
	return cmd
}

func TestGlobalFlags(t *testing.T) {
	cmd := newTestCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", "/tmp/x.yml", "--no-color", "--log-level", "debug", "--format", "json"}))

	g := GlobalFlags(cmd)
	assert.Equal(t, Globals{ConfigPath: "/tmp/x.yml", NoColor: true, LogLevel: "debug", Format: "json"}, g)
	assert.Equal(t, "/tmp/x.yml", g.ConfigFile())
}

func TestGlobals_ConfigFileDefault(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	assert.Equal(t, filepath.Join(dir, "forumtext", "config.yml"), Globals{}.ConfigFile())
}

func TestGlobals_LoadConfig(t *testing.T) {
	t.Setenv("FORUMTEXT_LOG_LEVEL", "none")
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("topic: \"55\"\n"), 0644))

	cfg, err := Globals{ConfigPath: path}.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "55", cfg.Topic)
	assert.Equal(t, "none", cfg.LogLevel)

	cfg, err = Globals{ConfigPath: path, LogLevel: "debug"}.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestGlobals_LoadConfig_Broken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("::::"), 0644))

	_, err := Globals{ConfigPath: path}.LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forumtext init")
}

func TestGlobals_Renderer(t *testing.T) {
	_, err := Globals{Format: "xml"}.Renderer()
	require.Error(t, err)

	r, err := Globals{Format: "json", NoColor: true}.Renderer()
	require.NoError(t, err)
	assert.EqualValues(t, "json", r.Format())
}

func TestFilterFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want config.Include
	}{
		{
			name: "no flags keeps config",
			args: nil,
			want: config.Include{Code: true, Smileys: true},
		},
		{
			name: "short flags",
			args: []string{"-q", "-s"},
			want: config.Include{Quotes: true, Strikethrough: true, Code: true, Smileys: true},
		},
		{
			name: "explicit false overrides config",
			args: []string{"--code=false", "--smileys=false", "--spoilers"},
			want: config.Include{Spoilers: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{Use: "test"}
			flags := config.Defaults().Include
			AddFilterFlags(cmd, &flags)
			require.NoError(t, cmd.ParseFlags(tt.args))

			cfg := &config.Config{Include: config.Include{Code: true, Smileys: true}}
			ApplyFilterFlags(cmd, flags, cfg)
			assert.Equal(t, tt.want, cfg.Include)
		})
	}
}

func TestTopicFlags_Apply(t *testing.T) {
	cfg := config.Defaults()
	err := TopicFlags{URL: "https://board.example.com/", Forum: "3", Topic: "9", PerPage: 25}.Apply(cfg)
	require.NoError(t, err)

	assert.Equal(t, "https://board.example.com/viewtopic.php", cfg.URL)
	assert.Equal(t, "3", cfg.Forum)
	assert.Equal(t, "9", cfg.Topic)
	assert.Equal(t, 25, cfg.PostsPerPage)

	err = TopicFlags{PerPage: -1}.Apply(config.Defaults())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "posts_per_page")
}

func TestNewClient(t *testing.T) {
	cfg := config.Defaults()
	client := NewClient(cfg)

	assert.Equal(t, 40, client.PerPage())
	assert.Equal(t, "https://forums.xkcd.com/viewtopic.php?f=7&start=40&t=101043", client.PageURL(1))
}
