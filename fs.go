package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// WebLampFS is an Afero FS with added functionality
// to replicate OS filesystems in testing
type WebLampFS interface {
	afero.Fs
	Abs(string) (string, error)
	HomeDir() (string, error)
}

type webLampOSFS struct {
	afero.Fs
}

func NewWebLampOSFS() WebLampFS {
	return &webLampOSFS{
		afero.NewOsFs(),
	}
}

func (g *webLampOSFS) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

func (g *webLampOSFS) HomeDir() (string, error) {
	return os.UserHomeDir()
}

type webLampMemFS struct {
	afero.Fs
}

func NewWebLampMemFS() WebLampFS {
	return &webLampMemFS{
		afero.NewMemMapFs(),
	}
}

func (g *webLampMemFS) Abs(path string) (string, error) {
	return path, nil
}

func (g *webLampMemFS) HomeDir() (string, error) {
	return "/", nil
}
