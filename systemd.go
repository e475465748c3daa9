package main

import (
	_ "embed"
	"os"
	"text/template"
)

//go:embed weblamp.service
var weblampServiceEmbed string

type WebLampServiceParams struct {
	BinaryPath string
	User       string
}

// SystemdServiceFile prints a unit file for the current binary to stdout,
// for piping into /etc/systemd/system/weblamp.service.
func SystemdServiceFile() {
	tmpl := template.New("weblamp.service")
	tmpl, err := tmpl.Parse(weblampServiceEmbed)
	if err != nil {
		panic(err)
	}

	path, err := os.Executable()
	if err != nil {
		panic(err)
	}

	params := WebLampServiceParams{
		BinaryPath: path,
		User:       "pi",
	}

	err = tmpl.Execute(os.Stdout, params)
	if err != nil {
		panic(err)
	}
}
