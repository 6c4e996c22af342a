package ncread

import (
	"fmt"
	"strings"
)

// ParseAttrPath splits "object@attr" into the object path and attribute
// name. An empty object path means the root group.
//
// Examples:
//   - "/@title" -> "/", "title"
//   - "geo/latitude@units" -> "/geo/latitude", "units"
func ParseAttrPath(path string) (objectPath, attrName string, err error) {
	if path == "" {
		return "", "", fmt.Errorf("empty attribute path")
	}
	at := strings.LastIndex(path, "@")
	if at == -1 {
		return "", "", fmt.Errorf("attribute path must contain '@': %s", path)
	}
	objectPath, attrName = CleanPath(path[:at]), path[at+1:]
	if attrName == "" {
		return "", "", fmt.Errorf("attribute name cannot be empty: %s", path)
	}
	return objectPath, attrName, nil
}

// JoinAttrPath is the inverse of ParseAttrPath.
func JoinAttrPath(objectPath, attrName string) string {
	objectPath = CleanPath(objectPath)
	if objectPath == "/" {
		return "/@" + attrName
	}
	return objectPath + "@" + attrName
}

// SplitPath splits a path into components, dropping empty ones.
func SplitPath(path string) []string {
	var out []string
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// CleanPath normalizes path to a leading "/" and no trailing "/".
func CleanPath(path string) string {
	parts := SplitPath(path)
	if len(parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(parts, "/")
}

// splitVar separates the group path from the variable name.
func splitVar(path string) (groups []string, name string) {
	parts := SplitPath(path)
	if len(parts) == 0 {
		return nil, ""
	}
	return parts[:len(parts)-1], parts[len(parts)-1]
}
