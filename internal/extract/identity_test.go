package extract

import "testing"

func TestExtractIdentity(t *testing.T) {
	text := "GOVERNO DO ESTADO\nNOME\nFULANO DE TAL\nMATRÍCULA-SEQ-DIG\n014.642-0 C\nCOMPETÊNCIA 03/2021\n"
	name, matricula := ExtractIdentity(text)
	if name != "FULANO DE TAL" {
		t.Fatalf("name = %q", name)
	}
	if matricula != "014.642-0 C" {
		t.Fatalf("matricula = %q", matricula)
	}
}

func TestExtractIdentityStripsTrailingDigits(t *testing.T) {
	text := "NOME\nFULANO DE TAL 12345\n"
	name, _ := ExtractIdentity(text)
	if name != "FULANO DE TAL" {
		t.Fatalf("name = %q", name)
	}
}

func TestExtractIdentityMissingFields(t *testing.T) {
	name, matricula := ExtractIdentity("CONTRACHEQUE SEM CABEÇALHO\n")
	if name != NotDetermined || matricula != NotDetermined {
		t.Fatalf("expected placeholders, got %q / %q", name, matricula)
	}
}

func TestExtractIdentityMatriculaWithoutSuffixLetter(t *testing.T) {
	text := "MATRÍCULA-SEQ-DIG\n123.456-7\n"
	_, matricula := ExtractIdentity(text)
	if matricula != "123.456-7" {
		t.Fatalf("matricula = %q", matricula)
	}
}
