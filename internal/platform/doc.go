package platform

// Package platform contains platform and filesystem glue: recognizing which
// hosting platform a URL belongs to, helpers for the shared download
// directory, and YouTube playlist inspection via the ytdlp library.
