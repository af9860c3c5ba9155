// Package app is the composition root of plakview.
//
// NewSession builds what every entry point shares: the state store with the
// persisted connection restored into it, a store subscriber that writes the
// connection back to the state file whenever a repository configuration
// loads, and an actions.Dispatcher. Run adds file logging and hands the
// session to the TUI.
//
//	config.Config ──> NewSession ──> state.Store + actions.Dispatcher
//	                      │               │
//	                      │               └──> Subscribe: ConfigLoaded ──> prefs.Update
//	                      └──> prefs.Load (state file) ──> ConfigRestored
//
//	Run ──> logging.Init (log file) ──> NewSession ──> ui.Run (blocks)
//
// Precedence for the API URL is: command line flag or PLAKVIEW_API_URL, then
// api_url in config.toml, then the connection saved in the state file. When
// the URL did not come from the state file its repository name is unknown, so
// Run configures it once in the background.
//
// Themes follow the same order, except that the theme saved by the TUI (T
// cycles it) sits between the flag and config.toml.
package app
