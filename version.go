package codeindex

// Version is the engine version stamped into ProjectIndex artifacts.
const Version = "2.3.0"
