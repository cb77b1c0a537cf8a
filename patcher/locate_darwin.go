//go:build darwin

package patcher

func defaultInstallRoot() (string, error) {
	return "/Applications", nil
}
