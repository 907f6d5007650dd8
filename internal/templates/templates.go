// Package templates embeds the starter files written by "logc init".
package templates

import (
	_ "embed"
)

// ConfigYAML is the commented config.yaml written by "logc init".
//
//go:embed config.template
var ConfigYAML []byte

// EnvFile is the .env skeleton written by "logc init".
//
//go:embed env.template
var EnvFile []byte

// File is one starter file and the name it is written under.
type File struct {
	Name    string
	Content []byte
	Mode    uint32
}

// Files returns the starter files in the order they are written. The .env file may
// hold credentials and is owner-only.
func Files() []File {
	return []File{
		{Name: "config.yaml", Content: ConfigYAML, Mode: 0o644},
		{Name: ".env", Content: EnvFile, Mode: 0o600},
	}
}
