package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/opd-ai/go-colormix/internal/config"
	"github.com/opd-ai/go-colormix/pkg/colormix"
)

// formatColor renders c as configured:
//
//	float: "0.5000 0.0000 0.5000 1.0000"
//	hex:   "#800080"
//	rgba:  "rgba(128, 0, 128, 1.0000)"
func formatColor(c colormix.Color, format config.Format, precision int) string {
	switch format {
	case config.FormatHex:
		return c.Hex()
	case config.FormatRGBA:
		n := c.NRGBA()
		return fmt.Sprintf("rgba(%d, %d, %d, %s)", n.R, n.G, n.B, formatFloat(c.Alpha(), precision))
	default:
		parts := make([]string, len(c))
		for i, v := range c {
			parts[i] = formatFloat(v, precision)
		}
		return strings.Join(parts, " ")
	}
}

func formatFloat(v float64, precision int) string {
	return strconv.FormatFloat(v, 'f', precision, 64)
}
