// Package sign construye la firma que exigen los proveedores con peticiones
// firmadas: MD5 hex de path + query canónica + secret. La canonicalización
// (claves ordenadas byte a byte, repetidas en el orden dado) tiene que ser
// bit-compatible con la del proveedor o toda llamada firmada se rechaza.
package sign

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// CanonicalQuery ordena los parámetros por clave ascendente (byte a byte) y
// los concatena como k=v&k=v. Las claves repetidas no se deduplican: se
// emiten todas, en el orden en que vienen.
func CanonicalQuery(query url.Values) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		for _, v := range query[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(v)
		}
	}
	return b.String()
}

// Signature calcula el digest hex MD5 de path + query canónica + secret,
// concatenados sin separadores. Si el proveedor espera el '?' entre path y
// query, debe venir incluido en 'path'.
func Signature(path string, query url.Values, secret string) string {
	payload := path + CanonicalQuery(query) + secret
	sum := md5.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])
}
