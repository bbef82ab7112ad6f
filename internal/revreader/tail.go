// internal/revreader/tail.go
package revreader

// Tail returns at most n lines from the end of the file at path, in file
// order. Only the tail of the file is read.
func Tail(path string, n int, opts ...Option) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	r, err := Open(path, opts...)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var lines []string
	for len(lines) < n {
		line, ok, err := r.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		lines = append(lines, line)
	}

	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return lines, nil
}
