// Package sound loops alarm audio through an external player process.
//
// Bundled assets are resolved under a fixed directory. When the asset is
// missing or the player fails to decode it, playback falls back to the default
// alert sound. The running player pid is recorded so a restarted daemon can
// reap a player orphaned by a crash.
package sound
