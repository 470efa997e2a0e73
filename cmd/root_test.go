package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadOptions(t *testing.T) {
	assert := assert.New(t)

	cfgFile = ""
	cfg, err := loadOptions()
	assert.NoError(err)
	assert.Equal(0, cfg.Thinning)
	assert.Nil(cfg.Progress)

	path := filepath.Join(t.TempDir(), "opts.yaml")
	data := "thinning: 2\nprogressName: run1\nstepSize: 0.5\n"
	assert.NoError(os.WriteFile(path, []byte(data), 0644))

	cfgFile = path
	defer func() { cfgFile = "" }()

	cfg, err = loadOptions()
	assert.NoError(err)
	assert.Equal(2, cfg.Thinning)
	assert.Equal("run1", cfg.ProgressName)
	assert.Equal(0.5, cfg.Extra["stepSize"])
}

func TestLoadOptionsMissingFile(t *testing.T) {
	assert := assert.New(t)

	cfgFile = filepath.Join(t.TempDir(), "no-such-file.yaml")
	defer func() { cfgFile = "" }()

	cfg, err := loadOptions()
	assert.Nil(cfg)
	assert.Error(err)
}
