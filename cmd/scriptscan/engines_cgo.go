//go:build cgo

package main

// The in-process Tesseract engine links libtesseract, so it is only
// available in cgo builds.
import _ "github.com/jackzampolin/scriptscan/internal/engine/gosseract"
