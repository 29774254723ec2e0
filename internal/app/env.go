package app

import (
	"bufio"
	"errors"
	"os"
	"strings"
)

// LoadEnvFiles loads dotenv files of KEY=VALUE pairs into the process
// environment. Later files override earlier ones, but variables already set
// in the real environment are left alone. Missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	values := map[string]string{}
	var order []string
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if err := readEnvFile(p, func(k, v string) {
			if _, seen := values[k]; !seen {
				order = append(order, k)
			}
			values[k] = v
		}); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return err
		}
	}
	for _, k := range order {
		if _, set := os.LookupEnv(k); set {
			continue
		}
		if err := os.Setenv(k, values[k]); err != nil {
			return err
		}
	}
	return nil
}

func readEnvFile(path string, set func(key, value string)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, val, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		val = strings.TrimSpace(val)
		if len(val) >= 2 && (val[0] == '"' || val[0] == '\'') && val[len(val)-1] == val[0] {
			val = val[1 : len(val)-1]
		}
		set(key, val)
	}
	return scanner.Err()
}
