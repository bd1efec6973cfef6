// Package ensure keeps a package present on the local host.
//
// An InstallCheck pairs a list command with an install sequence. The
// Ensurer runs the list command, searches its output for the literal
// "not installed", and only then runs the install sequence as the
// configured user in the configured directory:
//
//	e := ensure.New(nil)
//	res, err := e.EnsurePresent(ctx, ensure.InstallCheck{
//		Package:     "Text_LanguageDetect",
//		ListCommand: "pear list Text_LanguageDetect",
//		InstallCommands: []string{
//			"pecl channel-update pecl.php.net",
//			"pear install pear/Text_LanguageDetect-0.3.0",
//		},
//		User: "root",
//		Dir:  "/tmp",
//	})
//
// The package does no logging of its own. Captured output and exit codes
// are returned in Result and ProvisioningError for the caller to report.
package ensure
