package config

// document is the JSON schema of the configuration file.
//
// Example:
//
//	{
//	  "servers": {
//	    "filesystem": {
//	      "command": "relay-fs-server",
//	      "args": ["--root", "."],
//	      "workingDirectory": ".",
//	      "env": {"LOG_LEVEL": "warn"}
//	    }
//	  }
//	}
type document struct {
	Servers map[string]serverDTO `json:"servers"`
}

type serverDTO struct {
	Command          string            `json:"command"`
	Args             []string          `json:"args"`
	WorkingDirectory string            `json:"workingDirectory"`
	Env              map[string]string `json:"env"`
}
