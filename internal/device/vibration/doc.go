// Package vibration repeats an off/on waveform on a vibration motor.
package vibration
