// Package config loads and validates the certrenew configuration.
//
// The configuration names the domains to renew and, optionally, how the
// reverse proxy is controlled and where certificates live. It is read once
// at startup from a JSON (or YAML) file through viper and is immutable for
// the rest of the run.
//
// # Configuration Structure
//
// Only "domains" is required. Every other key has a default:
//
//	{
//	  "domains": [
//	    {"url": "a.example.com"},
//	    {"url": "b.example.com", "docker_volume": "custom"}
//	  ],
//	  "proxy":   {"name": "reverse-proxy", "type": "docker"},
//	  "paths":   {"volumes_root": "/var/lib/docker/volumes", "live_dir": "/etc/letsencrypt/live"},
//	  "certbot": {"verbose": true, "email": ""},
//	  "log_file": "cert-renewal.log"
//	}
//
// A domain without "docker_volume" is installed into the
// "reverse-proxy-certs" volume.
//
// # Environment
//
// Scalar settings may be overridden with CERTRENEW_-prefixed variables,
// e.g. CERTRENEW_PROXY_NAME or CERTRENEW_PATHS_VOLUMES_ROOT. LoadEnvFile
// reads a .env file into the environment first. The domain list is only
// taken from the file.
//
// # Validation
//
// Load fails with a CONFIG error when the file is missing or unparsable,
// when "domains" is absent or not a list, or when an entry has no "url".
// Validate(true) additionally rejects domain and volume names that are not
// plain hostnames or volume names.
//
// # Usage
//
//	cfg, err := config.Load("config.json")
//	if err != nil {
//	    // fatal: the proxy must still be restarted
//	}
//	for _, d := range cfg.Domains {
//	    fmt.Println(d.URL, d.Volume())
//	}
package config
