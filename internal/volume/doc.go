// Package volume installs certificates into docker named volumes by
// writing straight into the volume's data directory on the host,
// <root>/<volume>/_data/<domain>/, where the reverse proxy container
// reads fullchain.pem and privkey.pem.
package volume
