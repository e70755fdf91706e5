// Package playlist reads playlist sources and yields ordered SourceRecords.
//
// Two formats are supported: the Rhythmbox playlists.xml database (static
// playlists only) and m3u list files, either a single file or a directory of
// <name>.m3u files. Locations are percent-decoded exactly once here; every
// later stage treats origins as opaque byte strings.
package playlist
