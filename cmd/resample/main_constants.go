package main

// Default command-line flag values
const (
	defaultInputRate  = 44100 // CD quality sample rate
	defaultOutputRate = 48000 // DAT/DVD sample rate
	defaultChannels   = 2     // Stereo
	defaultSeconds    = 1.0
)

// Test signal parameters
const (
	testSignalFrequency = 1000.0 // 1 kHz test tone
	testSignalAmplitude = 0.5
	readChunk           = 512
)

// Demo sample rates
const (
	sampleRateCD    = 44100
	sampleRateDAT   = 48000
	sampleRate2xCD  = 88200
	sampleRateHiRes = 96000
	sampleRateVoIP  = 16000
)

// Demo channel configurations
const (
	monoChannels   = 1
	stereoChannels = 2
	surround5_1    = 6
	surround7_1    = 8
)

// Memory conversion
const (
	bytesPerKilobyte = 1024
)
