package main

import (
	"fmt"
	"os"

	"github.com/jeff-blank/svg2vd/pkg/drawable"
	"github.com/jeff-blank/svg2vd/pkg/svgxml"
)

// convert one SVG file into one drawable file
func convertFile(emitter *drawable.Emitter, svgFile, outputFile string) error {
	fin, err := os.Open(svgFile)
	if err != nil {
		return fmt.Errorf("can't read '%s': %w", svgFile, err)
	}
	defer fin.Close()

	shapes, vb := svgxml.Extract(fin, svgFile)
	return emitter.WriteFile(outputFile, shapes, vb)
}
