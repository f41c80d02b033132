// Package listview provides a virtual scrolling list for Bubble Tea programs.
//
// Only the rows inside the viewport are rendered, so the selector stays
// responsive on sheets with tens of thousands of rows. The item slice can be
// replaced as a filter narrows it; the cursor is clamped to the new bounds.
package listview
