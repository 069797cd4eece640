package utils

import "fmt"

// SiUnits formats number with a decimal SI prefix, e.g. "1.50 M".
func SiUnits(number float64, decimals int) string {
	switch {
	case number >= 1e12:
		return fmt.Sprintf("%.*f T", decimals, number/1e12)
	case number >= 1e9:
		return fmt.Sprintf("%.*f G", decimals, number/1e9)
	case number >= 1e6:
		return fmt.Sprintf("%.*f M", decimals, number/1e6)
	case number >= 1e3:
		return fmt.Sprintf("%.*f K", decimals, number/1e3)
	}
	return fmt.Sprintf("%.*f ", decimals, number)
}
