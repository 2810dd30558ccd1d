package env

// Prefix is the ENV variable prefix for the etbrates service
const Prefix = "ETBRATES"
