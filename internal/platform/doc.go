package platform

// Package platform provides OS-level helpers (folders, reveal in file
// manager, safe filenames) and the YouTube source resolver.
