// Package cli is the interactive terminal front end of the travel diary.
//
// NewApp wires configuration, the local state database, the backend gateway
// and the entry, session and tip services. App.Run resumes a stored session
// and then runs a line-oriented REPL until the user exits.
//
// Commands
//
//	register, login, logout, whoami
//	list, refresh, show <n|id>
//	new, edit <n|id>, delete <n|id>
//	tips, stats, help, exit
//
// new and edit open an image sub-prompt (add <ref...>, rm <n>, done).
package cli
