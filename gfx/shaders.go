package gfx

// Programs are keyed by effect name. Every fragment shader may read the palette texture
// through uPaletteTex alongside the uniforms its effect derives.
const vertexShaderSource = `
#version 410
in vec2 vertPos;
in vec2 texPos;
out vec2 uv;

void main() {
	uv = texPos;
	gl_Position = vec4(vertPos, 0.0, 1.0);
}`

const fragmentHeader = `
#version 410
precision highp float;

uniform float uTime;
uniform vec2 uResolution;
uniform float uQuality;
uniform float uTempo;
uniform float uPaletteSize;
uniform sampler2D uPaletteTex;

in vec2 uv;
out vec4 fragColor;

vec3 palette(float t) {
	float n = max(uPaletteSize, 1.0);
	float x = (clamp(t, 0.0, 1.0) * (n - 1.0) + 0.5) / n;
	return texture(uPaletteTex, vec2(x, 0.5)).rgb;
}
`

var fragmentSources = map[string]string{
	"passthrough": fragmentHeader + `
void main() {
	fragColor = vec4(palette(uv.y), 1.0);
}`,

	"sphere": fragmentHeader + `
uniform float uBrightness;
uniform float uRadius;
uniform float uHue;
uniform float uBalance;
uniform vec2 uRotation;
uniform float uBlurSamples;
uniform vec3 uColor;

void main() {
	vec2 p = (uv * 2.0 - 1.0) * vec2(uResolution.x / max(uResolution.y, 1.0), 1.0);
	p = mat2(uRotation.x, -uRotation.y, uRotation.y, uRotation.x) * p;
	p.x -= uBalance * 0.25;

	float glow = 0.0;
	int n = int(uBlurSamples);
	for (int i = 0; i < 64; i++) {
		if (i >= n) break;
		float r = uRadius * (1.0 + float(i) / float(max(n, 1)) * 0.5);
		glow += smoothstep(r, r * 0.6, length(p));
	}
	glow /= float(max(n, 1));

	vec3 c = mix(palette(uHue), uColor, 0.5);
	fragColor = vec4(c * glow * uBrightness, 1.0);
}`,

	"ripple": fragmentHeader + `
const int MAX_RIPPLES = 8;
uniform float uEnergy;
uniform float uBass;
uniform float uWidth;
uniform float uBlurSamples;
uniform float uRippleCount;
uniform vec4 uRipples[MAX_RIPPLES];
uniform vec3 uRippleColors[MAX_RIPPLES];

void main() {
	vec3 c = palette(uv.y) * 0.15 * uEnergy;
	for (int i = 0; i < MAX_RIPPLES; i++) {
		if (float(i) >= uRippleCount) break;
		vec4 r = uRipples[i];
		vec2 origin = vec2(r.x, 0.5);
		float d = abs(length(uv - origin) - r.z);
		float ring = smoothstep(uWidth * (1.0 + uBass), 0.0, d);
		c += uRippleColors[i] * ring * r.y;
	}
	fragColor = vec4(c, 1.0);
}`,

	"spectrum": fragmentHeader + `
const int MAX_BANDS = 64;
uniform float uVolume;
uniform float uBandCount;
uniform float uBands[MAX_BANDS];
uniform float uBalance[MAX_BANDS];

void main() {
	int n = int(clamp(uBandCount, 1.0, float(MAX_BANDS)));
	int i = int(uv.x * float(n));
	float h = uBands[min(i, n - 1)];
	float bar = step(uv.y, h);
	float side = uBalance[min(i, n - 1)] * 0.5 + 0.5;
	vec3 c = palette(h) * mix(1.0 - side, side, uv.y);
	fragColor = vec4(c * bar * (0.5 + 0.5 * uVolume), 1.0);
}`,
}

// fragmentSource returns the fragment shader of the named effect, falling back to the
// passthrough shader.
func fragmentSource(name string) (string, bool) {
	if src, ok := fragmentSources[name]; ok {
		return src, true
	}
	return fragmentSources["passthrough"], false
}
