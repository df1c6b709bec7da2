// Package ssl wraps certbot for obtaining certificates and reads the
// resulting PEM files.
//
// # Prerequisites
//
// Certbot must be installed on the system:
//
//	# Ubuntu/Debian
//	sudo apt install certbot
//
//	# CentOS/RHEL
//	sudo dnf install certbot
//
// Standalone mode binds port 80 itself, so whatever normally listens there
// (the reverse proxy) has to be stopped while Obtain runs.
//
// # Issuance
//
//	issuer := ssl.NewIssuer(executor.NewSystemExecutor(), ssl.IssuerOptions{
//	    LiveDir: "/etc/letsencrypt/live",
//	    Verbose: true,
//	})
//	cert, err := issuer.Obtain("example.com")
//
// Obtain runs
//
//	certbot certonly -d example.com --standalone -v --non-interactive --keep-until-expiring
//
// With --keep-until-expiring certbot leaves a certificate that is not yet
// due for renewal untouched and still exits successfully, so Obtain is safe
// to call on every run.
//
// # Certificate Paths
//
//	/etc/letsencrypt/live/{domain}/fullchain.pem  (certificate chain)
//	/etc/letsencrypt/live/{domain}/privkey.pem    (private key)
//
// # Inspection
//
// ReadCertificate parses a chain with lego's certcrypto and reports the
// leaf's names and validity window:
//
//	info, err := ssl.ReadCertificate(cert.CertPath)
//	fmt.Println(info.DaysLeft(time.Now()))
//
// # Testing
//
// Issuer takes an executor, so tests pass an *executor.MockExecutor. The
// ssltest subpackage writes self-signed certificates in certbot's layout.
package ssl
