package catalog

// DefaultSeed is the sample catalog installed by `catalogd --seed` into an empty database.
var DefaultSeed = []EntryInput{
	{
		Name:        "VS Code",
		Version:     "1.83.0",
		Description: "Lightweight but powerful source code editor.",
		DownloadURL: "vscode.exe",
		LogoRef:     "vscode.png",
		InstallType: string(InstallSilent),
		SilentArgs:  "/VERYSILENT /SUPPRESSMSGBOXES /NORESTART",
		Category:    "development",
	},
	{
		Name:        "7-Zip",
		Version:     "23.01",
		Description: "File archiver with a high compression ratio.",
		DownloadURL: "7z2301-x64.exe",
		LogoRef:     "7zip.png",
		InstallType: string(InstallSilent),
		SilentArgs:  "/S",
		Category:    "utilities",
	},
	{
		Name:        "Office Installer",
		Version:     "2021",
		Description: "Interactive installer; the user completes setup.",
		DownloadURL: "OfficeSetup.exe",
		InstallType: string(InstallManual),
		Category:    "office",
	},
}
