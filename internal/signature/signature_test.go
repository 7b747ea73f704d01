// ABOUTME: Tests for the signature function's rule order and fallback behavior.

package signature

import "testing"

func TestOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"blank", "   ", Empty},
		{"empty", "", Empty},
		{"python filename", "train_model.py", PythonFilename},
		{"python code", "import os\nprint(os.getcwd())  # main.py", PythonCode},
		{"python def", "def run():  # see util.py", PythonCode},
		{"filename rule shadows command", "python  train.py", PythonFilename},
		{"python command", "python run.pyw", PythonCommand},
		{"json file", "config.json", JSONFile},
		{"pip install", "pip install llama-cpp-python", PipInstall},
		{"pip install upper", "PIP INSTALL numpy", PipInstall},
		{"error message", "ModuleNotFoundError: No module named 'pandas'", ErrorMessage},
		{"traceback", "Traceback (most recent call last):", ErrorMessage},
		{"windows path", `C:\Users\me\notes.txt`, FilePath},
		{"url", "see https://go.dev/doc", URL},
		{"fallback three words", "Buy Milk And Eggs Today", "buy_milk_and"},
		{"fallback short", "hello", "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Of(tt.input); got != tt.want {
				t.Errorf("Of(%q) = %q; want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestOf_Deterministic(t *testing.T) {
	t.Parallel()

	in := "pip install requests"
	if a, b := Of(in), Of(in); a != b {
		t.Errorf("Of not deterministic: %q vs %q", a, b)
	}
}
