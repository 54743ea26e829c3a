package reflective

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk form of a curated set, kept with run artifacts.
type File struct {
	Task      string  `yaml:"task"`
	Candidate string  `yaml:"candidate"`
	Data      []Datum `yaml:"data"`
}

func WriteFile(f *File, path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal reflective file: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write reflective file: %w", err)
	}
	return nil
}

func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reflective file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse reflective file: %w", err)
	}
	return &f, nil
}
