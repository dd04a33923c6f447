// Package dmi decodes and encodes DMI icon files.
//
// A DMI file is a PNG whose "Description" text chunk lists the icon size
// and the states laid out across the bitmap. Decode turns the bytes into a
// sheet.Sheet; Encode writes a grid back out while carrying the original
// text chunks through untouched, byte for byte.
package dmi
