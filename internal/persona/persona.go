// Package persona loads the identity and background the reply drafts speak for.
package persona

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/subosito/gotenv"
)

// Persona is the person on whose behalf replies are written.
type Persona struct {
	UserName    string `env:"USER_NAME" envDefault:"Your Name"`
	PhoneNumber string `env:"PHONE_NUMBER" envDefault:"YOUR_PHONE_NUMBER"`
	ResumeLink  string `env:"RESUME_LINK" envDefault:"YOUR_RESUME_LINK"`

	// Resume and About are the only facts the model may use.
	Resume string `env:"-"`
	About  string `env:"-"`
}

// Sources says where the persona comes from.
type Sources struct {
	DotEnv     string `mapstructure:"dotenv"`
	ResumeFile string `mapstructure:"resume-file"`
	AboutFile  string `mapstructure:"about-file"`
}

// DefaultSources mirrors the layout the service is usually run from.
func DefaultSources() Sources {
	return Sources{
		DotEnv:     ".env",
		ResumeFile: "../resume-summary.txt",
		AboutFile:  "../linkdin-about-section.txt",
	}
}

// Load reads an optional .env file, the identity from the environment and
// the resume and about texts from disk. Both text files are required.
func Load(src Sources) (*Persona, error) {
	if path := strings.TrimSpace(src.DotEnv); path != "" {
		// gotenv never overrides variables that are already set.
		if err := gotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	var p Persona
	if err := env.Parse(&p); err != nil {
		return nil, fmt.Errorf("parsing persona environment: %w", err)
	}

	resume, err := readText("resume summary", src.ResumeFile)
	if err != nil {
		return nil, err
	}
	about, err := readText("linkedin about section", src.AboutFile)
	if err != nil {
		return nil, err
	}

	p.Resume = resume
	p.About = about

	return &p, nil
}

func readText(name, path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("%s file is not configured", name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s from %q: %w", name, path, err)
	}
	return string(data), nil
}
