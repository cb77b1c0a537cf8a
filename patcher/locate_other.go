//go:build !windows && !darwin

package patcher

func defaultInstallRoot() (string, error) {
	return "", errNoDefaultRoot
}
