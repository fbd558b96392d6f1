// Package badgerstore persists datasets in a Badger key-value database so that
// large text or generated datasets are parsed once and reloaded quickly.
//
// Layout: the dimension lives under "m/dim"; each vector under "v/" followed
// by its big-endian identifier, so iteration yields ascending identifiers.
// Vector values are little-endian float32.
package badgerstore
