package extauth

// Version is the bridge version reported in the default User-Agent.
const Version = "1.0.0"
