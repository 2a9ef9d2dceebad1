package security

// Compiled-in defaults for the validator rule sets. A ruleset file can
// replace any section; empty sections fall back to these.

func defaultBlockTokens() []string {
	return []string{
		"&&",
		"||",
		"|",
		">>",
		">",
		"<",
		"^",
		"%",
		"..",
		"$()",
		"`",
		"{",
		"}",
		"[",
		"]",
		"cmd /c",
		"powershell -c",
	}
}

func defaultBlockPatterns() []string {
	return []string{
		// long base64-looking tokens
		`\b[a-zA-Z0-9+/]{40,}={0,2}\b`,
		// long hex blobs
		`\b(?:0x)?[a-fA-F0-9]{32,}\b`,
		// embedded line breaks (also caught pre-normalization; kept here too)
		`[\r\n]`,
		// statement separator
		`;`,
	}
}

func defaultBlacklistKeywords() []string {
	return []string{
		"del",
		"erase",
		"rd",
		"rmdir",
		"format",
		"shutdown",
		"taskkill",
		"reg",
		"net user",
		"net localgroup",
		"powershell",
		"curl",
		"wget",
		"sc",
		"bcdedit",
		"diskpart",
		"cipher",
		"attrib",
		"takeown",
		"icacls",
		"vssadmin",
		"wmic",
		"fsutil",
	}
}

func defaultHighPrivCommands() []string {
	return []string{
		"net",
		"sc",
		"taskkill",
		"schtasks",
		"wmic",
		"reg",
		"takeown",
		"icacls",
	}
}

func defaultSensitivePaths() []string {
	return []string{
		"system32",
		`c:\windows`,
		"program files",
		"programdata",
		"boot",
	}
}
