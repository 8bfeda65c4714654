package layerfeature

import (
	"bufio"
	"os"
)

func openScanner(path string) (*os.File, *bufio.Scanner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, bufio.NewScanner(f), nil
}
