// Package audio plays confirmation sounds before power actions.
// It uses the beep library to play WAV, OGG, and MP3 audio files
// with volume control and one sound per action.
package audio
