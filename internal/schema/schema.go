package schema

// LintSchema is the JSON Schema (Draft 2020-12) for eslint's json formatter
// output. Only the fields the extractors read are constrained.
const LintSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "ESLint JSON report",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["filePath", "messages"],
    "properties": {
      "filePath": { "type": "string", "minLength": 1 },
      "messages": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["message"],
          "properties": {
            "ruleId": { "type": ["string", "null"] },
            "severity": { "type": "integer", "minimum": 0, "maximum": 2 },
            "message": { "type": "string" },
            "line": { "type": "integer" },
            "column": { "type": "integer" }
          }
        }
      },
      "errorCount": { "type": "integer", "minimum": 0 },
      "warningCount": { "type": "integer", "minimum": 0 }
    }
  }
}`

// DepsSchema is the JSON Schema for dependency-cruiser's json reporter output
const DepsSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "dependency-cruiser JSON report",
  "type": "object",
  "required": ["modules", "summary"],
  "properties": {
    "modules": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["source"],
        "properties": {
          "source": { "type": "string" },
          "coreModule": { "type": "boolean" },
          "couldNotResolve": { "type": "boolean" },
          "dependencies": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["resolved"],
              "properties": {
                "resolved": { "type": "string" },
                "coreModule": { "type": "boolean" },
                "couldNotResolve": { "type": "boolean" },
                "circular": { "type": "boolean" },
                "dependencyTypes": { "type": "array", "items": { "type": "string" } }
              }
            }
          },
          "dependents": { "type": "array", "items": { "type": "string" } }
        }
      }
    },
    "summary": {
      "type": "object",
      "properties": {
        "violations": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["from", "to", "rule"],
            "properties": {
              "from": { "type": "string" },
              "to": { "type": "string" },
              "rule": {
                "type": "object",
                "required": ["name"],
                "properties": {
                  "name": { "type": "string" },
                  "severity": { "type": "string" }
                }
              },
              "cycle": {
                "type": "array",
                "items": { "$ref": "#/$defs/CycleStep" }
              }
            }
          }
        },
        "totalCruised": { "type": "integer", "minimum": 0 }
      }
    }
  },
  "$defs": {
    "CycleStep": {
      "oneOf": [
        { "type": "string" },
        {
          "type": "object",
          "required": ["name"],
          "properties": { "name": { "type": "string" } }
        }
      ]
    }
  }
}`

// DeadCodeSchema is the JSON Schema for knip's json reporter output
const DeadCodeSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "knip JSON report",
  "type": "object",
  "required": ["issues"],
  "properties": {
    "files": { "type": "array", "items": { "type": "string" } },
    "issues": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["file"],
        "properties": {
          "file": { "type": "string" },
          "exports": { "$ref": "#/$defs/Symbols" },
          "types": { "$ref": "#/$defs/Symbols" }
        }
      }
    }
  },
  "$defs": {
    "Symbols": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name"],
        "properties": {
          "name": { "type": "string" },
          "line": { "type": "integer" },
          "col": { "type": "integer" }
        }
      }
    }
  }
}`

// LineCountSchema is the JSON Schema for the line-count report
const LineCountSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "Line count report",
  "type": "object",
  "required": ["files"],
  "properties": {
    "files": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["path", "lines", "code", "comment", "blank"],
        "properties": {
          "path": { "type": "string", "minLength": 1 },
          "language": { "type": "string" },
          "lines": { "type": "integer", "minimum": 0 },
          "code": { "type": "integer", "minimum": 0 },
          "comment": { "type": "integer", "minimum": 0 },
          "blank": { "type": "integer", "minimum": 0 },
          "complexity": { "type": "integer", "minimum": 0 },
          "functions": { "type": "integer", "minimum": 0 },
          "avg_function_length": { "type": "number", "minimum": 0 },
          "max_function_length": { "type": "integer", "minimum": 0 }
        }
      }
    }
  }
}`

// SnapshotSchema documents the snapshot served over HTTP and persisted as
// snapshot.json
const SnapshotSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "jsboard snapshot",
  "type": "object",
  "required": [
    "root", "largest_files", "complex_functions", "max_line_offenders",
    "cycles", "dead_code", "files", "data_quality", "tool_versions", "generated_at"
  ],
  "properties": {
    "root": { "type": "string" },
    "largest_files": { "type": "array", "items": { "$ref": "#/$defs/FileMetrics" } },
    "files": { "type": "array", "items": { "$ref": "#/$defs/FileMetrics" } },
    "complex_functions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["file", "line", "rule_id", "message"],
        "properties": {
          "file": { "type": "string", "minLength": 1 },
          "line": { "type": "integer" },
          "rule_id": { "type": "string" },
          "metric": { "type": "integer" },
          "message": { "type": "string" }
        }
      }
    },
    "max_line_offenders": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["file", "kind", "value", "limit"],
        "properties": {
          "file": { "type": "string", "minLength": 1 },
          "line": { "type": "integer" },
          "kind": { "enum": ["file", "function"] },
          "value": { "type": "integer" },
          "limit": { "type": "integer" }
        }
      }
    },
    "cycles": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["paths"],
        "properties": {
          "paths": { "type": "array", "minItems": 1, "items": { "type": "string", "minLength": 1 } }
        }
      }
    },
    "dead_code": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["file", "kind"],
        "properties": {
          "file": { "type": "string", "minLength": 1 },
          "symbol": { "type": "string" },
          "kind": { "enum": ["file", "export"] },
          "line": { "type": "integer" }
        }
      }
    },
    "composition": {
      "type": "object",
      "required": ["total_files", "total_lines", "total_code", "languages"],
      "properties": {
        "total_files": { "type": "integer", "minimum": 0 },
        "total_lines": { "type": "integer", "minimum": 0 },
        "total_code": { "type": "integer", "minimum": 0 },
        "total_comment": { "type": "integer", "minimum": 0 },
        "total_blank": { "type": "integer", "minimum": 0 },
        "average_file_lines": { "type": "number" },
        "median_file_lines": { "type": "number" },
        "share_basis": { "enum": ["code", "lines", "files"] },
        "languages": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["language", "files", "lines", "code", "percentage"],
            "properties": {
              "language": { "type": "string" },
              "files": { "type": "integer" },
              "lines": { "type": "integer" },
              "code": { "type": "integer" },
              "percentage": { "type": "number", "minimum": 0, "maximum": 100 }
            }
          }
        }
      }
    },
    "data_quality": {
      "type": "object",
      "required": ["ambiguous_references", "unresolved_references", "failed_tools"],
      "properties": {
        "ambiguous_references": { "type": "integer", "minimum": 0 },
        "unresolved_references": { "type": "integer", "minimum": 0 },
        "failed_tools": { "type": "array", "items": { "enum": ["lint", "deps", "deadcode", "linecount"] } }
      }
    },
    "tool_versions": { "type": "object", "additionalProperties": { "type": "string" } },
    "generated_at": { "type": "string", "format": "date-time" }
  },
  "$defs": {
    "FileMetrics": {
      "type": "object",
      "required": ["file", "loc", "code", "comment", "blank"],
      "properties": {
        "file": { "type": "string", "minLength": 1 },
        "language": { "type": "string" },
        "loc": { "type": "integer", "minimum": 0 },
        "code": { "type": "integer", "minimum": 0 },
        "comment": { "type": "integer", "minimum": 0 },
        "blank": { "type": "integer", "minimum": 0 },
        "functions": { "type": "integer", "minimum": 0 },
        "avg_function_length": { "type": "number", "minimum": 0 },
        "max_function_length": { "type": "integer", "minimum": 0 },
        "complexity": { "type": "integer" },
        "dependencies": { "type": "integer", "minimum": 0 },
        "dependents": { "type": "integer", "minimum": 0 }
      }
    }
  }
}`
