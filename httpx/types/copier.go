package types

import "github.com/jinzhu/copier"

// Copy fills dst from src by matching field names
func Copy(dst, src any) error {
	return copier.Copy(dst, src)
}

// CopySlice maps src element-wise with convert
func CopySlice[S, D any](src []S, convert func(S) D) []D {
	dst := make([]D, len(src))
	for i, s := range src {
		dst[i] = convert(s)
	}
	return dst
}
